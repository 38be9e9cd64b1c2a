// Package cmd implements the command-line interface for the scraper
// service. It provides the root command plus subcommands for serving the
// HTTP API and running one-off scrapes.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug forces debug-level console logging.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "zillow-scraper",
		Short: "A resilient real-estate listing scraper",
		Long: `A scraping service that extracts property listings, agent
directories, and reviews from a hostile commercial site, with proxy
rotation, identity rotation, and rate limiting built in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Make .env values visible before any configuration is read.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zillow-scraper version %s\n", version)
		},
	})

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(scrapeCommand())
}
