package main

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/datadeck-io/datadeck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or write server configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("server.port: %d\n", cfg.Server.Port)
		fmt.Printf("server.cors_origins: %v\n", cfg.Server.CORSOrigins)
		fmt.Printf("upload.max_bytes: %d\n", cfg.Upload.MaxBytes)
		fmt.Printf("session.ttl_minutes: %d\n", cfg.Session.TTLMinutes)
		fmt.Printf("session.sweep_minutes: %d\n", cfg.Session.SweepMinutes)
		fmt.Printf("log.verbose: %v\n", cfg.Log.Verbose)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Config written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
