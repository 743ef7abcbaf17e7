package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"invopt-mcp/internal/config"
	"invopt-mcp/internal/logging"
	"invopt-mcp/internal/mcp"
	"invopt-mcp/internal/snapshot"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	store   *snapshot.Store
)

var rootCmd = &cobra.Command{
	Use:   "invopt-mcp",
	Short: "INVOPT-MCP is a demand forecasting and inventory policy MCP Server",
	Long: `A specialized MCP Server that forecasts monthly demand per variant (Holt's linear trend method),
derives periodic-review stocking policies and stress-tests them with a seeded Monte-Carlo simulation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Offline commands write JSON to stdout and keep stderr clean for errors
		logging.Init(logging.Options{Verbose: verbose, Quiet: cmd != cmd.Root()})

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		store = snapshot.NewStore()
		if err := store.Load(cfg.SnapshotDir); err != nil {
			return fmt.Errorf("failed to load snapshots from %s: %w", cfg.SnapshotDir, err)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Int("variants", store.Count()).
			Str("snapshotDir", cfg.SnapshotDir).
			Msg("INVOPT-MCP starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("MCP Server starting Stdio loop")
		return mcp.NewServer(cfg, store, Version).Start(cmd.Context())
	},
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(forecastCmd, backtestCmd, planCmd, optimizeCmd, compareCmd, leadTimeCmd, versionCmd)
}
