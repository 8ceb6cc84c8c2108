// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Command keri-agent runs the KERI identifier driver.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aumos-ai/keri-agent/config"
	"github.com/aumos-ai/keri-agent/logger"
)

var version = "dev"

type globals struct {
	configPath string
	logLevel   string
}

// load reads the configuration and applies the --log-level flag over it.
func (g *globals) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	log := logger.New(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "keri-agent",
		Version:     version,
	})
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "keri-agent",
		Short:         "KERI identifier lifecycle driver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("KERI_AGENT_CONFIG"), "path to a YAML config file (env KERI_AGENT_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level: debug|info|warn|error")

	root.AddCommand(newServeCmd(g))
	root.AddCommand(newDemoCmd(g))
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newResolveCmd())
	return root
}

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
