package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/log"
	"github.com/hyperpolymath/reposystem/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "reposystem",
	Short: "reposystem - a local, declarative control plane for a multi-repo ecosystem",
	Long: `reposystem tracks a graph of repositories and the dependency edges
between them, qualitative aspects attached to repos and edges, swappable
capability slots bound to competing providers, and scenarios that describe
a desired future state as a plan of operations — derived, previewed, and
applied transactionally with automatic or manual rollback.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"reposystem version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "", "Override the data directory (defaults to REPOSYSTEM_DATA_DIR or the platform user-data directory)")

	cobra.OnInitialize(initLogging, initMetrics)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(edgeCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(aspectCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(slotCmd)
	rootCmd.AddCommand(providerCmd)
	rootCmd.AddCommand(bindingCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(viewCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// initMetrics starts the /metrics server in the background when
// REPOSYSTEM_METRICS_ADDR is set, mirroring warren's opt-in /metrics wiring
// in cmd/warren/main.go.
func initMetrics() {
	addr := os.Getenv("REPOSYSTEM_METRICS_ADDR")
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(addr); err != nil {
			log.Errorf("metrics server exited", err)
		}
	}()
}
