/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the pokedex YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/utils"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "configs/pokedex.yaml"

// ErrMissingDefaultLimit is returned when no positive default_limit is set.
var ErrMissingDefaultLimit = errors.New("default_limit must be configured as a positive integer")

type Config struct {
	// DefaultLimit is the page size used when a listing request has none.
	// There is no built-in value: it must come from the file or environment.
	DefaultLimit int             `yaml:"default_limit"`
	Log          LogConfig       `yaml:"log"`
	Database     database.Config `yaml:"database"`
	HTTP         HTTPConfig      `yaml:"http"`
	Seed         SeedConfig      `yaml:"seed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SeedConfig struct {
	// File is the YAML seed read by the seed endpoint and the seed command.
	File string `yaml:"file"`
	// Upsert overwrites existing dex numbers instead of clearing the table.
	Upsert bool `yaml:"upsert"`
}

// Default returns a Config with everything but DefaultLimit filled in.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: database.Config{
			ConnectionConfig:  *database.DefaultConnectionConfig(),
			DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
		},
		HTTP: HTTPConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Seed: SeedConfig{
			File: "configs/seed.yaml",
		},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.DefaultLimit = utils.EnvDefaultInt("POKEDEX_DEFAULT_LIMIT", c.DefaultLimit)
	c.HTTP.Addr = utils.EnvDefaultString("POKEDEX_HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = utils.EnvDefaultString("POKEDEX_LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.EnvDefaultString("CONSOLE_LOG_FORMAT", c.Log.Format)
	c.Seed.File = utils.EnvDefaultString("POKEDEX_SEED_FILE", c.Seed.File)
	database.OverrideFromEnv(&c.Database.ConnectionConfig)
}

// Validate reports configuration the application cannot start with.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return ErrMissingDefaultLimit
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q, want text or json", c.Log.Format)
	}
	return nil
}
