// Package cmd implements the CLI commands for rental-gateway.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rental-gateway",
	Short: "Guesty pricing and Google reviews gateway",
	Long: "An API service that fetches Guesty OAuth tokens, normalizes Guesty invoice, " +
		"calendar, and rate-plan pricing into one stay price, and proxies Google Places reviews.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCommand())
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
