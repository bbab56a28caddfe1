// Package cmd implements the CLI commands for the brochure generator
// using Cobra. Configuration is loaded through Viper from brochure.yaml
// or BROCHURE_* environment variables; the API key is injected into the
// model client here, never read from the environment inside the pipeline.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "brochure",
	Short: "Generate a company brochure from a website URL",
	Long: `brochure fetches a company website, discovers the pages relevant to a
marketing brochure (About, Careers, Products, Contact), and asks a
language model to write a markdown brochure from their content.

Usage:
  brochure generate <url> [flags]`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./brochure.yaml or ~/.config/brochure/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("brochure")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brochure"))
		}
	}

	viper.SetEnvPrefix("BROCHURE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}
