// Command deshim is a small harness binary that wires every package of the
// interface desugaring engine together over an in-memory fixture program.
// It is not a class-file or dex reader/writer: the real host driver that
// feeds this library a parsed program and writes its output back out lives
// upstream and downstream of this module (see the package doc for desugar).
// This exists only to exercise the full pipeline end to end and to give the
// config/report packages a caller.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jianglei12138/deshim/internal/common"
	"github.com/jianglei12138/deshim/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deshim",
		Short: "deshim desugars default, static, and private interface methods",
	}

	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the deshim version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(common.Version)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	var logLevel string
	var encodeChecksums bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the desugaring engine over the built-in fixture program",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				lvl, err := parseCLILogLevel(logLevel)
				if err != nil {
					return err
				}
				opts.LogLevel = lvl
			}
			if cmd.Flags().Changed("encode-checksums") {
				opts.EncodeChecksums = encodeChecksums
			}
			return runFixture(opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a deshim.toml configuration file (default: "+common.ConfigFileName+" if present)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level: silent|error|warn|verbose")
	cmd.Flags().BoolVar(&encodeChecksums, "encode-checksums", false, "override the configured checksum encoding mode")
	return cmd
}

func loadOptions(explicitPath string) (config.Options, error) {
	path := explicitPath
	if path == "" {
		path = common.ConfigFileName
	}
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func parseCLILogLevel(s string) (config.LogLevel, error) {
	switch s {
	case "silent":
		return config.LogSilent, nil
	case "error":
		return config.LogError, nil
	case "warn":
		return config.LogWarn, nil
	case "verbose":
		return config.LogVerbose, nil
	default:
		return 0, fmt.Errorf("deshim: unknown --log-level %q", s)
	}
}

func runFixture(opts config.Options) error {
	repository, oracle := buildFixtureProgram()

	res, err := desugarRun(context.Background(), repository, oracle, opts)
	if err != nil {
		return err
	}
	if res.Failed {
		return fmt.Errorf("deshim: run failed, see diagnostics above")
	}
	return nil
}
