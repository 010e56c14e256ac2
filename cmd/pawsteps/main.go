// Command pawsteps runs the dog-walking site: the JSON API with its
// prerendered pages, or a one-shot render of the pages against a running API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pawsteps",
	Short: "PawSteps dog-walking site",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may be set directly.
		_ = godotenv.Load()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pawsteps %s\n", version)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, renderCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
