package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notenlabs/gradebench/internal/observability"
	"github.com/notenlabs/gradebench/pkg/manifest"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List chat models available at the endpoint",
	Long: `Query the endpoint's model listing and print the chat models the
benchmark could run against, after applying exclusions.

The endpoint is taken from a job manifest or given directly via --base-url.

Example:
  gradebench models --job bench.yaml
  gradebench models --base-url https://api.example.com
  gradebench models --job bench.yaml --exclude auto --exclude smallest-chat-model`,
	RunE: runModels,
}

var (
	modelsJobPath  string
	modelsBaseURL  string
	modelsExcludes []string
	modelsJSON     bool
)

// defaultModelExcludes are aliases and routing pseudo-models that make no
// sense to benchmark individually.
var defaultModelExcludes = []string{"auto", "smallest-chat-model"}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsJobPath, "job", "j", "", "Path to job manifest")
	modelsCmd.Flags().StringVar(&modelsBaseURL, "base-url", "", "Endpoint base URL (overrides manifest)")
	modelsCmd.Flags().StringArrayVar(&modelsExcludes, "exclude", defaultModelExcludes, "Model names to exclude")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Print as JSON")
}

// modelListing is the endpoint's /models response shape.
type modelListing struct {
	ChatModels []string `json:"chat_models"`
}

func runModels(cmd *cobra.Command, args []string) error {
	baseURL := modelsBaseURL
	if baseURL == "" {
		if modelsJobPath == "" {
			return exitError(foundry.ExitInvalidArgument, "Missing endpoint",
				fmt.Errorf("either --job or --base-url is required"))
		}
		m, err := manifest.Load(modelsJobPath)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
		}
		baseURL = m.Endpoint.BaseURL
	}

	models, err := fetchChatModels(cmd, baseURL)
	if err != nil {
		return err
	}

	filtered := filterModels(models, modelsExcludes)

	observability.CLILogger.Debug("Fetched model listing",
		zap.String("base_url", baseURL),
		zap.Int("total", len(models)),
		zap.Int("after_excludes", len(filtered)))

	if modelsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	for _, m := range filtered {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	return nil
}

// fetchChatModels queries {base}/models and extracts the chat model names.
func fetchChatModels(cmd *cobra.Command, baseURL string) ([]string, error) {
	url := strings.TrimRight(baseURL, "/") + "/models"

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid endpoint URL", err)
	}

	httpClient := &http.Client{}
	if appConfig != nil && appConfig.HTTP.Timeout > 0 {
		httpClient.Timeout = appConfig.HTTP.Timeout
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to query model listing", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Model listing request failed",
			fmt.Errorf("%s returned status %d", url, resp.StatusCode))
	}

	var listing modelListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Invalid model listing response", err)
	}

	return listing.ChatModels, nil
}

// filterModels drops excluded names and sorts the rest.
func filterModels(models, excludes []string) []string {
	excluded := make(map[string]struct{}, len(excludes))
	for _, e := range excludes {
		excluded[e] = struct{}{}
	}

	var out []string
	for _, m := range models {
		if _, skip := excluded[m]; skip {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
