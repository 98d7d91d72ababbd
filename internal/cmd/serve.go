package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/notenlabs/gradebench/internal/observability"
	"github.com/notenlabs/gradebench/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a results file and its analysis over HTTP",
	Long: `Load a results CSV and expose it over HTTP: raw rows under
/api/results and the derived analysis (statistics, winners, bias tables)
under /api/report and friends.

Example:
  gradebench serve --results results.csv
  gradebench serve --results results.csv --port 9090`,
	RunE: runServe,
}

var (
	serveResultsPath string
	serveHost        string
	servePort        int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveResultsPath, "results", "r", "", "Path to results CSV (required)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")

	_ = serveCmd.MarkFlagRequired("results")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	results, err := loadResults(serveResultsPath)
	if err != nil {
		return err
	}

	host := appConfig.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := appConfig.Server.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(host, port, versionInfo.Version, results)
	srv.SetTimeouts(server.Timeouts{
		Read:     appConfig.Server.ReadTimeout,
		Write:    appConfig.Server.WriteTimeout,
		Idle:     appConfig.Server.IdleTimeout,
		Shutdown: appConfig.Server.ShutdownTimeout,
	})

	if err := srv.ListenAndServe(ctx, observability.CLILogger); err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}
