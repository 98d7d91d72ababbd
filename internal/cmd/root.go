// Package cmd implements the gradebench command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notenlabs/gradebench/internal/config"
	"github.com/notenlabs/gradebench/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "gradebench",
	Short: "Benchmark LLM grading quality against human-graded exams",
	Long: `gradebench runs a corpus of human-graded exam submissions through
multiple LLM models and prompt styles, records every attempt, and derives
comparative statistics: grading accuracy, consistency, latency, token
efficiency, and per-subject bias.

A benchmark run is configured by a YAML or JSON job manifest; see the run
command for details.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logProfile != "" {
			cfg.Logging.Profile = logProfile
		}
		if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
		}
		appConfig = cfg
		return nil
	},
}

var (
	logLevel   string
	logProfile string

	// appConfig holds the ambient settings resolved in PersistentPreRunE.
	appConfig *config.Config
)

// versionInfo holds build metadata injected via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata from main's ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logProfile, "log-profile", "", "Log profile (CONSOLE|STRUCTURED)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gradebench %s (commit %s, built %s)\n",
			versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// cmdError pairs a user-facing message with a typed process exit code.
type cmdError struct {
	code foundry.ExitCode
	msg  string
	err  error
}

func (e *cmdError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *cmdError) Unwrap() error {
	return e.err
}

// exitError wraps an error with the exit code the process should terminate
// with. Execute unwraps it at the boundary.
func exitError(code foundry.ExitCode, msg string, err error) error {
	return &cmdError{code: code, msg: msg, err: err}
}

// Execute runs the root command and translates errors to exit codes.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	observability.Sync()

	if err == nil {
		return
	}

	var ce *cmdError
	if errors.As(err, &ce) {
		observability.CLILogger.Error(ce.msg, zap.Error(ce.err))
		os.Exit(int(ce.code))
	}

	observability.CLILogger.Error("Command failed", zap.Error(err))
	os.Exit(1)
}
