// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the literature-helper CLI.
// Commands: run (fetch, analyze, export, save), serve (JSON API),
// ask (help chat), version.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/logging"
	"github.com/pdiddy/literature-helper/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ and .env at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE once flags are parsed.
var logger = zap.NewNop()

// secretValue returns override when set, else the loaded secret or its
// environment variable.
func secretValue(key, override string) string {
	if override != "" {
		return override
	}
	return secrets.Lookup(loadedSecrets, key)
}

// rootCmd is the base command for the literature-helper CLI.
var rootCmd = &cobra.Command{
	Use:   "literature-helper",
	Short: "Find, rate and file academic papers for a research topic",
	Long: `literature-helper fetches candidate papers for a research topic from a
literature source, asks a language model for tags, a summary and a relevance
score for each one, renders BibTeX and Markdown exports, and optionally saves
papers that clear a relevance threshold into a Zotero library.

API keys are read from files in .secrets/ (one key per file) and from a .env
file in the working directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		if err := secrets.LoadDotenv(".env", s); err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		l, err := logging.New(viper.GetBool("log.debug"))
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./literature-helper.yaml or ~/.config/literature-helper/literature-helper.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("gemini-api-key", "", "language model API key (default: gemini-api-key secret)")
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("literature-helper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "literature-helper"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("LITERATURE_HELPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
