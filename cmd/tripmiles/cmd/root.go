// Package cmd provides the CLI commands for tripmiles.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ifta-mileage/internal/config"
	"ifta-mileage/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tripmiles",
	Short: "Attribute trucking trip mileage to US states",
	Long: `tripmiles computes per-state mileage for trucking trips, the numbers
needed for quarterly fuel tax filings.

It geocodes trip sheet stops, routes each leg, and splits the driven miles
across the states the route traverses.

Examples:
  tripmiles analyze "Bloomington, CA" "Phoenix, AZ" "Dallas, TX"
  tripmiles analyze --miles 2450 --kml trip.kml "San Bernardino, CA" "Laredo, TX"
  tripmiles extract scan.jpg`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if verbose {
		cfg.Logging.Level = "debug"
	}
	log = logging.MustNew(cfg.Logging)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tripmiles version 0.1.0")
	},
}
