package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notenlabs/gradebench/internal/observability"
	"github.com/notenlabs/gradebench/pkg/analysis"
	"github.com/notenlabs/gradebench/pkg/bench"
	"github.com/notenlabs/gradebench/pkg/corpus"
	"github.com/notenlabs/gradebench/pkg/manifest"
	"github.com/notenlabs/gradebench/pkg/output"
	"github.com/notenlabs/gradebench/pkg/prompt"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark job from manifest",
	Long: `Run a grading benchmark as defined in a YAML or JSON manifest file.

The manifest specifies the models under test, endpoint connection, corpus
and prompt locations, dispatch behavior, and the results destination.

Example:
  gradebench run --job bench.yaml
  gradebench run --job bench.yaml --output file:results.csv
  gradebench run --job bench.yaml --dry-run
  cat bench.yaml | gradebench run --job -`,
	RunE: runBenchmark,
}

var (
	runJobPath string
	runOutput  string
	runDryRun  bool
	runReport  bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runJobPath, "job", "j", "", "Path to job manifest, or - for stdin (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Override results destination")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate manifest and show plan without executing")
	runCmd.Flags().BoolVar(&runReport, "report", true, "Print the analysis report after the run")

	_ = runCmd.MarkFlagRequired("job")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := loadManifest(cmd, runJobPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	observability.CLILogger.Debug("Loaded manifest",
		zap.String("path", runJobPath),
		zap.Strings("models", m.Models),
		zap.String("corpus", m.Corpus.Root),
		zap.String("prompts", m.Prompts.Root))

	if runOutput != "" {
		m.Output.Destination = runOutput
	}

	// Discover jobs and templates before touching the network so an empty
	// or broken corpus fails fast with nothing partial written.
	jobs, templates, err := loadInputs(m)
	if err != nil {
		return err
	}

	if runDryRun {
		return showRunPlan(m, jobs, templates)
	}

	return executeBenchmark(ctx, m, jobs, templates)
}

// loadInputs discovers the corpus and prompt templates, enforcing the fatal
// preconditions: no jobs and no prompt styles both abort the run.
// loadManifest reads the job manifest from a file, or from the command's
// stdin when path is "-".
func loadManifest(cmd *cobra.Command, path string) (*manifest.Manifest, error) {
	if path == "-" {
		return manifest.LoadFromReader(cmd.InOrStdin(), "")
	}
	return manifest.Load(path)
}

func loadInputs(m *manifest.Manifest) ([]corpus.GradingJob, []prompt.Template, error) {
	disc, err := corpus.NewDiscoverer(m.Corpus.Root, corpus.Config{
		TaskPattern:      m.Corpus.TaskPattern,
		MaterialsPattern: m.Corpus.MaterialsPattern,
	}, observability.CLILogger)
	if err != nil {
		return nil, nil, exitError(foundry.ExitInvalidArgument, "Invalid corpus configuration", err)
	}

	jobs, err := disc.Discover()
	if err != nil {
		return nil, nil, exitError(foundry.ExitFileReadError, "Corpus discovery failed", err)
	}
	if len(jobs) == 0 {
		return nil, nil, exitError(foundry.ExitInvalidArgument, "No grading jobs found",
			fmt.Errorf("corpus root %s yielded no jobs", m.Corpus.Root))
	}

	templates, err := prompt.LoadTemplates(m.Prompts.Root, observability.CLILogger)
	if err != nil {
		return nil, nil, exitError(foundry.ExitFileReadError, "Failed to load prompt templates", err)
	}
	if len(templates) == 0 {
		return nil, nil, exitError(foundry.ExitInvalidArgument, "No prompt styles found",
			fmt.Errorf("prompts root %s has no complete styles", m.Prompts.Root))
	}

	return jobs, templates, nil
}

// showRunPlan displays what would be dispatched without executing.
func showRunPlan(m *manifest.Manifest, jobs []corpus.GradingJob, templates []prompt.Template) error {
	styles := make([]string, 0, len(templates))
	for _, t := range templates {
		styles = append(styles, t.StyleName)
	}

	fmt.Println("=== Benchmark Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Endpoint:      %s\n", m.Endpoint.BaseURL)
	fmt.Printf("Models:        %s\n", strings.Join(m.Models, ", "))
	fmt.Printf("Prompt styles: %s\n", strings.Join(styles, ", "))
	fmt.Printf("Grading jobs:  %d\n", len(jobs))
	fmt.Printf("Work items:    %d\n", len(jobs)*len(templates)*len(m.Models))
	fmt.Println()
	fmt.Printf("Concurrency:   %d default", m.Concurrency.Default)
	if len(m.Concurrency.Models) > 0 {
		fmt.Printf(", %d overrides", len(m.Concurrency.Models))
	}
	fmt.Println()
	fmt.Printf("Retry:         %d attempts, %.1fs initial delay, %.1fs jitter\n",
		m.Retry.MaxAttempts, m.Retry.InitialDelay, m.Retry.Jitter)
	if m.RateLimit > 0 {
		fmt.Printf("Rate limit:    %.1f req/s per model\n", m.RateLimit)
	}
	fmt.Printf("Temperature:   %.2f\n", m.Endpoint.TemperatureValue())
	fmt.Printf("Output:        %s\n", m.Output.Destination)
	fmt.Println()
	fmt.Println("Manifest validated successfully. Remove --dry-run to execute.")
	return nil
}

// executeBenchmark runs the dispatch and writes results.
func executeBenchmark(ctx context.Context, m *manifest.Manifest, jobs []corpus.GradingJob, templates []prompt.Template) error {
	runID := uuid.New().String()

	apiKey, err := readCredential(m.Endpoint.CredentialFile)
	if err != nil {
		return err
	}

	timeout := appConfig.HTTP.Timeout
	if m.Endpoint.TimeoutSeconds > 0 {
		timeout = time.Duration(m.Endpoint.TimeoutSeconds * float64(time.Second))
	}

	client, err := bench.NewOpenAIClient(m.Endpoint.BaseURL, apiKey, timeout)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid endpoint configuration", err)
	}

	sink, err := output.ResolveSink(m.Output.Destination, output.S3Options{
		Endpoint:        m.Output.S3.Endpoint,
		Region:          m.Output.S3.Region,
		AccessKeyID:     m.Output.S3.AccessKeyID,
		SecretAccessKey: m.Output.S3.SecretAccessKey,
		ForcePathStyle:  m.Output.S3.ForcePathStyle,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid output destination", err)
	}

	runner := bench.New(client, bench.Config{
		Models:             m.Models,
		Concurrency:        m.Concurrency.Models,
		DefaultConcurrency: m.Concurrency.Default,
		Retry: bench.RetryPolicy{
			MaxAttempts:  m.Retry.MaxAttempts,
			InitialDelay: time.Duration(m.Retry.InitialDelay * float64(time.Second)),
			Jitter:       time.Duration(m.Retry.Jitter * float64(time.Second)),
		},
		RateLimit:   m.RateLimit,
		Temperature: float32(m.Endpoint.TemperatureValue()),
	}, observability.CLILogger)

	observability.CLILogger.Info("Starting benchmark",
		zap.String("run_id", runID),
		zap.Int("jobs", len(jobs)),
		zap.Int("prompt_styles", len(templates)),
		zap.Strings("models", m.Models))

	results, summary := runner.Run(ctx, jobs, templates)
	if ctx.Err() != nil {
		// Partial results are not written; rerun from scratch.
		return exitError(foundry.ExitSignalInt, "Benchmark cancelled", ctx.Err())
	}

	if err := sink.Write(ctx, results); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write results", err)
	}

	observability.CLILogger.Info("Benchmark completed",
		zap.String("run_id", runID),
		zap.Int("total_items", summary.TotalItems),
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
		zap.Int64("retries", summary.Retries),
		zap.Duration("duration", summary.Duration),
		zap.String("destination", sink.Description()))

	if runReport {
		report := analysis.Analyze(results)
		if err := report.Render(os.Stdout); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to render report", err)
		}
	}

	return nil
}

// readCredential reads and trims the bearer token file. An unreadable or
// empty credential aborts the run before any dispatch.
func readCredential(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", exitError(foundry.ExitFileNotFound, "Credential file not found",
				fmt.Errorf("credential file %s does not exist", path))
		}
		return "", exitError(foundry.ExitFileReadError, "Failed to read credential file", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", exitError(foundry.ExitInvalidArgument, "Credential file is empty",
			fmt.Errorf("credential file %s holds no token", path))
	}
	return token, nil
}
