// Package main provides the pathway_agent CLI for the skill identity and proficiency engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathway_agent",
	Short: "Skill profile normalization and career pathway tool",
	Long:  "pathway_agent canonicalizes skill identifiers, maps academic results to skill levels, merges skill profiles and drives the job and major pathway against the recommendation backend.",
}

var (
	rootConfigPath string
	rootVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
