package report

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
)

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG = pterm.FgRed
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	infoColorFG  = pterm.FgLightGreen
	successColor = pterm.FgLightGreen
)

func displayFatal(e FatalError) {
	fmt.Println()
	errorStyleBG.Print(" Fatal Error ")
	fmt.Print(" ")
	infoColorFG.Println(e.Interface)
	errorColorFG.Println(e.Message)
}

func displayICE(message string) {
	fmt.Println()
	errorStyleBG.Print(" Internal Compiler Error ")
	fmt.Println()
	errorColorFG.Println(message)
	infoColorFG.Println("This is a bug in the desugaring engine, not in the input program.")
}

func displayConfigError(message string) {
	warnStyleBG.Print(" Configuration Error ")
	fmt.Print(" ")
	errorColorFG.Println(message)
}

var (
	phaseSpinner  *pterm.SpinnerPrinter
	currentPhase  string
	phaseStarted  time.Time
)

func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(infoColorFG))
	phaseSpinner.Start(phase + "...")
	phaseStarted = time.Now()
}

func displayEndPhase(success bool) {
	if phaseSpinner == nil {
		return
	}
	elapsed := time.Since(phaseStarted)
	if success {
		phaseSpinner.Success(fmt.Sprintf("%s (%.3fs)", currentPhase, elapsed.Seconds()))
	} else {
		phaseSpinner.Fail(currentPhase)
	}
	phaseSpinner = nil
}

func displaySummary(fatalCount, benignSkips int, elapsed time.Duration) {
	fmt.Println()
	if fatalCount == 0 {
		successColor.Print("desugaring succeeded ")
	} else {
		errorColorFG.Print("desugaring failed ")
	}
	fmt.Printf("(%d fatal error(s), %d benign skip(s), %.3fs)\n", fatalCount, benignSkips, elapsed.Seconds())
}
