// Copyright 2026 The Clagate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = "config/.env"

// NewConfig loads configuration from environment using viper with typed
// defaults and validation. A config/.env file seeds the environment without
// overriding variables already set.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4200)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.job_timeout", 2*time.Minute)

	v.SetDefault("github.api_base_url", "https://api.github.com/")
	v.SetDefault("github.bot_login", "clagate[bot]")
	v.SetDefault("github.page_size", 100)
	v.SetDefault("github.max_parallel", 8)

	v.SetDefault("cla.version", "1.0")
	v.SetDefault("cla.status_context", "clagate/cla")
	v.SetDefault("cla.signed_label", "cla:signed")
	v.SetDefault("cla.missing_label", "cla:missing")
	v.SetDefault("cla.trust_bots", true)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"http.request_timeout",
		"http.job_timeout",
		"github.app_id",
		"github.private_key",
		"github.private_key_file",
		"github.webhook_secret",
		"github.api_base_url",
		"github.bot_login",
		"github.page_size",
		"github.max_parallel",
		"cla.url",
		"cla.version",
		"cla.status_context",
		"cla.signed_label",
		"cla.missing_label",
		"cla.trust_bots",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
