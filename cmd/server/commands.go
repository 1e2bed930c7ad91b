// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
	"github.com/traylinx/modelprobe/internal/cmd"
	"github.com/traylinx/modelprobe/internal/config"
	"github.com/traylinx/modelprobe/internal/logging"
)

// loadConfig reads the --config file (optional), applies env overrides and
// configures logging from the result.
func loadConfig(c *cobra.Command) (*config.Config, string, error) {
	path, _ := c.Flags().GetString("config")
	debug, _ := c.Flags().GetBool("debug")

	cfg, err := config.LoadConfigOptional(path, true)
	if err != nil {
		return nil, "", err
	}
	cfg.ApplyEnv(nil)
	if debug {
		cfg.Debug = true
	}
	logging.SetDebug(cfg.Debug)
	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogDir); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// buildServeCmd creates the "serve" command that runs the HTTP API.
func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the modelprobe API server",
		Long: `Start the HTTP API. The config file is watched and credential changes
are applied without a restart. Graceful shutdown is handled on SIGINT/SIGTERM.`,
		Example: `  modelprobe serve --config /etc/modelprobe/config.yaml`,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(c)
			if err != nil {
				return err
			}
			return cmd.StartService(cfg, path)
		},
	}
}

// buildDiscoverCmd creates the "discover" command.
func buildDiscoverCmd() *cobra.Command {
	var (
		provider string
		refresh  bool
	)
	c := &cobra.Command{
		Use:   "discover",
		Short: "List the models available from one or all providers",
		Example: `  modelprobe discover
  modelprobe discover --provider anthropic --refresh`,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			svc, err := cmd.NewService(cfg)
			if err != nil {
				return err
			}
			snap, err := svc.Discover(c.Context(), provider, refresh)
			if err != nil {
				return err
			}
			return cmd.WriteJSON(c.OutOrStdout(), snap)
		},
	}
	c.Flags().StringVarP(&provider, "provider", "p", "all", "Provider name or \"all\"")
	c.Flags().BoolVar(&refresh, "refresh", false, "Bypass the snapshot cache")
	return c
}

// buildTestCmd creates the "test" command.
func buildTestCmd() *cobra.Command {
	var provider, model, modality string
	c := &cobra.Command{
		Use:     "test",
		Short:   "Probe a single model with a minimal live request",
		Example: `  modelprobe test --provider openai --model gpt-4o-mini --type chat`,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			svc, err := cmd.NewService(cfg)
			if err != nil {
				return err
			}
			result, err := svc.Test(c.Context(), provider, model, modality)
			if err != nil {
				return err
			}
			return cmd.WriteJSON(c.OutOrStdout(), result)
		},
	}
	c.Flags().StringVarP(&provider, "provider", "p", "", "Provider name")
	c.Flags().StringVarP(&model, "model", "m", "", "Model id")
	c.Flags().StringVarP(&modality, "type", "t", "chat", "Modality: chat, image, embedding, audio-in, audio-out, realtime")
	_ = c.MarkFlagRequired("provider")
	_ = c.MarkFlagRequired("model")
	return c
}

// buildVerifyCmd creates the "verify" command.
func buildVerifyCmd() *cobra.Command {
	var provider, model string
	c := &cobra.Command{
		Use:     "verify",
		Short:   "Check whether a model id exists for a provider",
		Example: `  modelprobe verify --provider gemini --model gemini-2.0-flash`,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			svc, err := cmd.NewService(cfg)
			if err != nil {
				return err
			}
			result, err := svc.Verify(c.Context(), provider, model)
			if err != nil {
				return err
			}
			return cmd.WriteJSON(c.OutOrStdout(), result)
		},
	}
	c.Flags().StringVarP(&provider, "provider", "p", "", "Provider name")
	c.Flags().StringVarP(&model, "model", "m", "", "Model id")
	_ = c.MarkFlagRequired("provider")
	_ = c.MarkFlagRequired("model")
	return c
}
