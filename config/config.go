/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jecluis/trelloboards/trello"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	User  string `json:"user" yaml:"user"`
	Key   string `json:"key" yaml:"key"`
	Token string `json:"token" yaml:"token"`

	BaseURL string        `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Timeout time.Duration `json:"-" yaml:"timeout,omitempty"`
	Retries int           `json:"retries,omitempty" yaml:"retries,omitempty"`

	// Lenient parses non-2xx bodies as data instead of failing.
	Lenient bool `json:"lenient,omitempty" yaml:"lenient,omitempty"`
}

// ReadConfig loads a YAML or JSON configuration file. TRELLO_CONFIG,
// when set, takes precedence over cfg. Credentials from the
// environment are applied on top.
func ReadConfig(cfg string) (*Config, error) {

	confFile := os.Getenv("TRELLO_CONFIG")
	if confFile == "" {
		confFile = cfg
	}

	contents, err := os.ReadFile(confFile)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", confFile, err)
	}

	config := new(Config)
	switch strings.ToLower(filepath.Ext(confFile)) {
	case ".json":
		var raw struct {
			Config
			Timeout string `json:"timeout,omitempty"`
		}
		if err := json.Unmarshal(contents, &raw); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", confFile, err)
		}
		*config = raw.Config
		if raw.Timeout != "" {
			if config.Timeout, err = time.ParseDuration(raw.Timeout); err != nil {
				return nil, fmt.Errorf("parsing config %s: timeout: %w", confFile, err)
			}
		}
	default:
		if err := yaml.Unmarshal(contents, config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", confFile, err)
		}
	}

	config.applyEnv()
	return config, nil
}

// LoadEnv reads .env style files into the process environment, without
// overriding variables that are already set, and returns a config built
// from the environment alone. Missing files are ignored.
func LoadEnv(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	config := new(Config)
	config.applyEnv()
	return config, nil
}

func (config *Config) applyEnv() {
	if v := os.Getenv("TRELLO_USER"); v != "" {
		config.User = v
	}
	if v := os.Getenv("TRELLO_KEY"); v != "" {
		config.Key = v
	}
	if v := os.Getenv("TRELLO_TOKEN"); v != "" {
		config.Token = v
	}
}

func (config *Config) Validate() error {
	if config.Retries < 0 {
		return fmt.Errorf("config: retries must not be negative, got %d",
			config.Retries)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s",
			config.Timeout)
	}
	return config.Credentials().Validate()
}

func (config *Config) Credentials() trello.Credentials {
	return trello.Credentials{
		UserID: config.User,
		Key:    config.Key,
		Token:  config.Token,
	}
}

// Executor builds the HTTP executor described by the configuration.
func (config *Config) Executor() *trello.HTTPExecutor {
	exec := trello.NewHTTPExecutor(config.BaseURL)
	if config.Timeout > 0 {
		exec.Timeout = config.Timeout
	}
	exec.Retries = config.Retries
	exec.Lenient = config.Lenient
	return exec
}
