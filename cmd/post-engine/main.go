// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the post-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/post-engine/internal/logging"
	"github.com/pdiddy/post-engine/internal/secrets"
	"github.com/pdiddy/post-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, built before any subcommand runs.
	cfg types.Config

	// logger is the structured logger shared by every component.
	logger *logrus.Logger
)

// rootCmd is the base command for the post-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "post-engine",
	Short: "Draft LinkedIn posts from a curated topic pool into Notion",
	Long: `post-engine picks an unused topic from a bucketed topic pool, drafts a
post with a local language model, validates its structure, and files it as a
Draft page in a Notion database. A history ledger keeps topics from repeating
until the whole pool has been used.

Use draft for one run, refresh to rebuild the topic pool from allowed web
sources and model suggestions, and topics or history to inspect state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = viper.GetString("log.level")
		}
		format, _ := cmd.Flags().GetString("log-format")
		logger = logging.New(level, format)

		envFile, _ := cmd.Flags().GetString("env-file")
		if _, err := secrets.LoadEnvFile(envFile, logger); err != nil {
			return err
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.WithField("keys", keys).Debug("loaded secrets")
		}

		c, err := loadConfig(viper.GetViper(), s)
		if err != nil {
			return err
		}
		cfg = c
		// LOG_LEVEL may only have arrived through the env file.
		if level == "" {
			logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./post-engine.yaml or ~/.config/post-engine/post-engine.yaml)")
	rootCmd.PersistentFlags().String("env-file", "config.env", "dotenv file loaded into the environment")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (notion-token, notion-database-id)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "log format: text or json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("post-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "post-engine"))
		}
	}

	bindConfig(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
