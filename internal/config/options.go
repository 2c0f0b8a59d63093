// Package config loads and validates run configuration for the desugaring
// engine, the way the teacher compiler loads its module file: a small TOML
// document decoded with github.com/pelletier/go-toml and validated before
// anything else in the pipeline runs.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
)

// LogLevel is the verbosity the report package is configured with; report
// takes config.LogLevel directly and has no level type of its own.
type LogLevel int

const (
	LogSilent LogLevel = iota
	LogError
	LogWarn
	LogVerbose
)

func parseLogLevel(s string) (LogLevel, error) {
	switch s {
	case "", "verbose":
		return LogVerbose, nil
	case "warn":
		return LogWarn, nil
	case "error":
		return LogError, nil
	case "silent":
		return LogSilent, nil
	default:
		return LogVerbose, fmt.Errorf("config: unknown log level %q", s)
	}
}

// tomlOptions is the on-disk shape of the configuration file.
type tomlOptions struct {
	EncodeChecksums bool     `toml:"encode-checksums"`
	LogLevel        string   `toml:"log-level"`
	Workers         int      `toml:"workers"`
	PinnedMembers   []string `toml:"pinned-members"`
}

// Options is the validated, run-ready configuration.
type Options struct {
	// EncodeChecksums selects between the real (7x) checksum scheme and the
	// "invalid request" placeholder for synthesized classes.
	EncodeChecksums bool

	// LogLevel controls how much the report package prints.
	LogLevel LogLevel

	// Workers bounds the planner's errgroup concurrency. Zero means
	// runtime.NumCPU().
	Workers int

	// PinnedMembers lists descriptor strings ("Holder.name(proto)") treated
	// as pinned when the host shrinker supplies no liveness oracle.
	PinnedMembers []string
}

// Default returns the engine's default configuration: checksums disabled,
// verbose logging, one worker per CPU, nothing pinned.
func Default() Options {
	return Options{
		EncodeChecksums: false,
		LogLevel:        LogVerbose,
		Workers:         0,
	}
}

// EffectiveWorkers returns Workers, or runtime.NumCPU() if Workers <= 0.
func (o Options) EffectiveWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Load reads and validates a TOML configuration file at path.
func Load(path string) (Options, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: unable to read %q: %w", path, err)
	}
	return Parse(buf)
}

// Parse validates a TOML configuration document already in memory.
func Parse(buf []byte) (Options, error) {
	var raw tomlOptions
	if err := toml.Unmarshal(buf, &raw); err != nil {
		return Options{}, fmt.Errorf("config: malformed configuration: %w", err)
	}

	level, err := parseLogLevel(raw.LogLevel)
	if err != nil {
		return Options{}, err
	}

	if raw.Workers < 0 {
		return Options{}, fmt.Errorf("config: workers must be >= 0, got %d", raw.Workers)
	}

	return Options{
		EncodeChecksums: raw.EncodeChecksums,
		LogLevel:        level,
		Workers:         raw.Workers,
		PinnedMembers:   raw.PinnedMembers,
	}, nil
}
