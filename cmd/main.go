package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-fleet",
	Short: "Passenger fleet service",
	Long: `go-fleet tracks passengers boarding and leaving a fleet of vehicles.
A passenger name can occupy at most one seat across the whole fleet.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "dotenv files merged into the environment")
	rootCmd.AddCommand(newServeCmd(), newDemoCmd(), newWatchCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
