// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package config loads keri-agent settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/digest"
)

// Config holds every keri-agent setting. Zero fields are filled by defaults.
type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	KERI struct {
		// DigestCode is the qb64 code of the SAID/commitment digest: E, F, H or I.
		DigestCode string `yaml:"digest_code"`
	} `yaml:"keri"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path over the defaults, applies environment overrides, and
// validates the result. An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:9999"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.KERI.DigestCode == "" {
		c.KERI.DigestCode = string(digest.Default)
	}
}

// applyEnvOverrides lets environment variables override the file.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("KERI_DIGEST_CODE"); ok {
		c.KERI.DigestCode = v
	}
}

// Validate rejects settings the registry or server cannot run with.
func (c *Config) Validate() error {
	switch c.App.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("config: app.env must be dev or prod, got %q", c.App.Env)
	}
	if err := digest.Validate(c.Digest()); err != nil {
		return fmt.Errorf("config: keri.digest_code: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must not be empty")
	}
	return nil
}

// Digest returns the configured digest code.
func (c *Config) Digest() cesr.Code {
	return cesr.Code(c.KERI.DigestCode)
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	}
	return 0, false
}
