// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bridgecheck/bridgecheck/lib/config"
	"github.com/bridgecheck/bridgecheck/lib/process"
)

// sourceFlags selects the configuration file and the bridge binary.
// Every command that talks to the bridge embeds it.
type sourceFlags struct {
	ConfigPath string
	Bridge     string
}

func (s *sourceFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&s.ConfigPath, "config", "c", "",
		"config file (.yaml, .json, .jsonc; default $"+config.EnvVar+", else built-in defaults)")
	flagSet.StringVar(&s.Bridge, "bridge", "", "bridge executable to test (overrides bridge.binary)")
}

// load resolves the configuration and applies --bridge. The result is
// not validated; callers apply their own overrides first.
func (s *sourceFlags) load() (*config.Config, error) {
	cfg, err := config.Resolve(s.ConfigPath)
	if err != nil {
		return nil, err
	}
	if s.Bridge != "" {
		cfg.Bridge.Binary = s.Bridge
	}
	return cfg, nil
}

// loadValid is load followed by validation.
func (s *sourceFlags) loadValid() (*config.Config, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newInvoker runs the bridge with the configured per-command timeout.
func newInvoker(cfg *config.Config, logger *slog.Logger) *process.Invoker {
	return &process.Invoker{Logger: logger, Timeout: cfg.Bridge.Timeout()}
}
