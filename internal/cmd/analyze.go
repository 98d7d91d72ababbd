package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notenlabs/gradebench/internal/observability"
	"github.com/notenlabs/gradebench/pkg/analysis"
	"github.com/notenlabs/gradebench/pkg/bench"
	"github.com/notenlabs/gradebench/pkg/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a results file from a previous run",
	Long: `Recompute the full analysis from a results CSV written by the run
command: per-model and per-prompt-style statistics, ranking winners, and
per-subject bias tables.

Example:
  gradebench analyze --results results.csv
  gradebench analyze --results results.csv --format json`,
	RunE: runAnalyze,
}

var (
	analyzeResultsPath string
	analyzeFormat      string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeResultsPath, "results", "r", "", "Path to results CSV (required)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "Output format (text|json)")

	_ = analyzeCmd.MarkFlagRequired("results")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	results, err := loadResults(analyzeResultsPath)
	if err != nil {
		return err
	}

	observability.CLILogger.Debug("Loaded results",
		zap.String("path", analyzeResultsPath),
		zap.Int("rows", len(results)))

	report := analysis.Analyze(results)

	switch analyzeFormat {
	case "text":
		if err := report.Render(os.Stdout); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to render report", err)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to encode report", err)
		}
	default:
		return exitError(foundry.ExitInvalidArgument, "Invalid --format value",
			fmt.Errorf("format must be text or json, got %q", analyzeFormat))
	}

	return nil
}

// loadResults reads a results CSV, mapping file errors to exit codes.
func loadResults(path string) ([]bench.AttemptResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, exitError(foundry.ExitFileNotFound, "Results file not found",
				fmt.Errorf("results file %s does not exist", path))
		}
		return nil, exitError(foundry.ExitFileReadError, "Failed to open results file", err)
	}
	defer f.Close()

	results, err := output.ReadResults(f)
	if err != nil {
		return nil, exitError(foundry.ExitFileReadError, "Failed to parse results file", err)
	}
	if len(results) == 0 {
		return nil, exitError(foundry.ExitInvalidArgument, "Results file is empty",
			fmt.Errorf("results file %s holds no rows", path))
	}
	return results, nil
}
