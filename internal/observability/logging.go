// Package observability provides logging setup for the gradebench CLI.
//
// Two loggers are exposed: CLILogger for human-facing command output on
// stderr, and a structured profile for machine consumption. Data records
// (results, reports) always go to stdout through pkg/output; logs never do.
package observability

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for command execution.
//
// It defaults to a console encoder at info level writing to stderr so that
// piped stdout output stays clean. Call Init early in command startup to
// apply configured level and profile.
var CLILogger = mustDefaultLogger()

// Profile names accepted by Init.
const (
	ProfileConsole    = "CONSOLE"
	ProfileStructured = "STRUCTURED"
)

// Init reconfigures CLILogger with the given level and profile.
//
// Level is one of debug/info/warn/error (case-insensitive). Profile selects
// the encoder: CONSOLE for human-readable output, STRUCTURED for JSON lines.
func Init(level, profile string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	var encoder zapcore.Encoder
	switch strings.ToUpper(profile) {
	case ProfileConsole, "":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case ProfileStructured:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return fmt.Errorf("unknown logging profile: %s", profile)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)
	CLILogger = zap.New(core)
	return nil
}

// Sync flushes buffered log entries. Best effort: stderr sync errors on
// some platforms are expected and ignored.
func Sync() {
	_ = CLILogger.Sync()
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}

func mustDefaultLogger() *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapcore.InfoLevel,
	)
	return zap.New(core)
}
