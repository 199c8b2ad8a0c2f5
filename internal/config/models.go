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

package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	CLA     CLAConfig     `mapstructure:"cla"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if c.GitHub.AppID <= 0 {
		return errors.New("github.app_id is required")
	}
	if c.GitHub.PrivateKey == "" && c.GitHub.PrivateKeyFile == "" {
		return errors.New("github.private_key or github.private_key_file is required")
	}
	if c.CLA.URL == "" {
		return errors.New("cla.url is required")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains outbound transport settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	JobTimeout     time.Duration `mapstructure:"job_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// GitHubConfig describes the GitHub App identity and API access tuning.
type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	PrivateKey     string `mapstructure:"private_key"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	BotLogin       string `mapstructure:"bot_login"`
	PageSize       int    `mapstructure:"page_size"`
	MaxParallel    int    `mapstructure:"max_parallel"`
}

// PrivateKeyPEM returns the App's RSA private key, reading it from
// github.private_key_file when the inline value is empty.
func (g GitHubConfig) PrivateKeyPEM() ([]byte, error) {
	if g.PrivateKey != "" {
		return []byte(g.PrivateKey), nil
	}
	pem, err := os.ReadFile(g.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read private key file: %w", err)
	}
	return pem, nil
}

// CLAConfig describes the agreement being enforced and how its state is
// reported on pull requests.
type CLAConfig struct {
	URL           string `mapstructure:"url"`
	Version       string `mapstructure:"version"`
	StatusContext string `mapstructure:"status_context"`
	SignedLabel   string `mapstructure:"signed_label"`
	MissingLabel  string `mapstructure:"missing_label"`
	TrustBots     bool   `mapstructure:"trust_bots"`
}
