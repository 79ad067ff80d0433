package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/datadeck-io/datadeck/internal/config"
	"github.com/datadeck-io/datadeck/internal/logger"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Loaded configuration
	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "datadeck-server",
	Short: "DataDeck: data analysis dashboard backend",
	Long: `DataDeck serves the analysis API behind the dashboard frontend:
upload CSV datasets or load database tables, then explore summaries,
correlations, distributions and time series over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Running without a subcommand starts the server.
		return runServe()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// The flag wins over file and env when explicitly set
	if rootCmd.PersistentFlags().Changed("verbose") {
		cfg.Log.Verbose = verbose
	}
	logger.SetVerbose(cfg.Log.Verbose)
}
