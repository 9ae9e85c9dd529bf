package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "sitterboard",
	Short:         "sitterboard - babysitting notice board API",
	Long:          `Parents post babysitting notices, students apply, and each notice fills with exactly one accepted application.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json); environment variables take precedence")
	rootCmd.AddCommand(serveCmd, migrateCmd, profileCmd, tokenCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
