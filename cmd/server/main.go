// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for modelprobe. It serves the catalog
// discovery and validation API, or runs a single discovery, probe or verify
// from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/traylinx/modelprobe/internal/buildinfo"
	"github.com/traylinx/modelprobe/internal/logging"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	if wd, err := os.Getwd(); err == nil {
		if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil && !os.IsNotExist(errLoad) {
			log.Warnf("failed to load .env file: %v", errLoad)
		}
	}

	if err := buildRootCmd().Execute(); err != nil {
		log.Errorf("command execution failed: %v", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modelprobe",
		Short: "Discover and validate models across AI providers",
		Long: `modelprobe lists the models each configured provider exposes and
verifies, with a minimal live request, that a model answers in a given modality.

Supported providers: OpenAI, Anthropic, Google Gemini, xAI`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(
		buildServeCmd(),
		buildDiscoverCmd(),
		buildTestCmd(),
		buildVerifyCmd(),
	)
	return rootCmd
}
