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

// Package main wires the CLA enforcement service.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/clagate/clagate/internal/config"
	"github.com/clagate/clagate/internal/contributors"
	"github.com/clagate/clagate/internal/githubapp"
	"github.com/clagate/clagate/internal/logging"
	"github.com/clagate/clagate/internal/revalidation"
	"github.com/clagate/clagate/internal/signatures"
	"github.com/clagate/clagate/internal/validation"
	"github.com/clagate/clagate/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	privateKey, err := cfg.GitHub.PrivateKeyPEM()
	if err != nil {
		log.Errorw("private key unavailable", "error", err)
		return
	}

	auth, err := githubapp.New(cfg.GitHub.AppID, privateKey, cfg.GitHub.APIBaseURL, cfg.HTTP.RequestTimeout)
	if err != nil {
		log.Errorw("token authority initialization failed", "error", err)
		return
	}

	resolver := contributors.NewResolver(cfg.GitHub.PageSize, cfg.GitHub.MaxParallel, cfg.CLA.TrustBots, log)
	store := signatures.NewMemoryStore()

	engine := validation.NewEngine(resolver, store, validation.Options{
		CLAURL:        cfg.CLA.URL,
		StatusContext: cfg.CLA.StatusContext,
		BotLogin:      cfg.GitHub.BotLogin,
		SignedLabel:   cfg.CLA.SignedLabel,
		MissingLabel:  cfg.CLA.MissingLabel,
		PageSize:      cfg.GitHub.PageSize,
		MaxParallel:   cfg.GitHub.MaxParallel,
	}, log)

	scheduler := revalidation.NewScheduler(auth, engine, cfg.CLA.StatusContext,
		cfg.GitHub.PageSize, cfg.GitHub.MaxParallel, log)

	server := webhook.NewServer(webhook.Config{
		Addr:            cfg.ServerAddr(),
		WebhookSecret:   cfg.GitHub.WebhookSecret,
		CLAVersion:      cfg.CLA.Version,
		JobTimeout:      cfg.HTTP.JobTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, auth, engine, scheduler, store, log)

	if err := server.Start(ctx); err != nil {
		log.Errorw("server failed", "error", err)
	}
}
