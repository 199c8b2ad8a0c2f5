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

package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/clagate/clagate/internal/signatures"
	"github.com/clagate/clagate/internal/validation"
)

// Engine validates pull requests.
type Engine interface {
	Validate(ctx context.Context, targets []validation.Target) []validation.Result
}

// Revalidator re-checks pull requests blocked on a signer.
type Revalidator interface {
	OnSignature(ctx context.Context, signer string) ([]validation.Result, error)
}

// ClientSource issues installation-scoped GitHub clients.
type ClientSource interface {
	InstallationClient(ctx context.Context, installationID int64) (*gh.Client, error)
}

// Config holds server wiring options.
type Config struct {
	Addr          string
	WebhookSecret string
	CLAVersion    string
	// JobTimeout bounds the background validation kicked off by a delivery;
	// webhook responses return before validation completes.
	JobTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server handles GitHub webhook requests and the signature intake endpoint.
type Server struct {
	cfg         Config
	clients     ClientSource
	engine      Engine
	revalidator Revalidator
	store       signatures.Store
	rateLimiter *RateLimiter
	log         *zap.SugaredLogger
	server      *http.Server
	jobs        sync.WaitGroup
}

// RateLimiter provides per-repository rate limiting.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	limit    int
	window   time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewServer creates a new webhook server.
func NewServer(cfg Config, clients ClientSource, engine Engine, revalidator Revalidator, store signatures.Store, log *zap.SugaredLogger) *Server {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	return &Server{
		cfg:         cfg,
		clients:     clients,
		engine:      engine,
		revalidator: revalidator,
		store:       store,
		rateLimiter: NewRateLimiter(10, time.Second), // 10 deliveries per second per repo
		log:         log,
	}
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request from the given repository should be allowed.
func (rl *RateLimiter) Allow(repo string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.limiters[repo]
	if !exists {
		b = &bucket{
			tokens:    rl.limit,
			lastReset: time.Now(),
		}
		rl.limiters[repo] = b
	}

	if time.Since(b.lastReset) >= rl.window {
		b.tokens = rl.limit
		b.lastReset = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)
	r.Post("/signatures", s.handleSignature)

	return r
}

// Start runs the server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Infow("starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx := context.Background()
		if s.cfg.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
			defer cancel()
		}
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, waiting for in-flight background
// validations to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Infow("shutting down webhook server")
	err := s.server.Shutdown(ctx)
	s.jobs.Wait()
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleWebhook handles GitHub webhook deliveries. Processing happens in the
// background; GitHub only needs the delivery acknowledged.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Errorw("failed to read request body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Signature verification gates processing only when a secret is
	// configured.
	if s.cfg.WebhookSecret != "" {
		valid := ValidateSignature(payload,
			r.Header.Get("X-Hub-Signature"),
			r.Header.Get("X-Hub-Signature-256"),
			s.cfg.WebhookSecret)
		if !valid {
			s.log.Infow("invalid webhook signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	switch r.Header.Get("X-GitHub-Event") {
	case "pull_request":
		s.handlePullRequestEvent(w, payload)
	case "issue_comment":
		s.handleIssueCommentEvent(w, payload)
	case "ping":
		w.WriteHeader(http.StatusOK)
	default:
		s.log.Debugw("ignoring event", "event", r.Header.Get("X-GitHub-Event"))
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handlePullRequestEvent(w http.ResponseWriter, payload []byte) {
	var event PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Errorw("failed to parse pull_request payload", "error", err)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch strings.ToLower(event.Action) {
	case "opened", "reopened", "synchronize", "edited":
	default:
		s.log.Debugw("ignoring pull_request action", "action", event.Action)
		w.WriteHeader(http.StatusOK)
		return
	}

	if !s.rateLimiter.Allow(event.Repository.FullName) {
		s.log.Infow("rate limit exceeded", "repository", event.Repository.FullName)
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	s.startValidation(event.Installation.ID,
		event.Repository.Owner.Login, event.Repository.Name,
		event.Number, event.PullRequest.Head.SHA)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleIssueCommentEvent(w http.ResponseWriter, payload []byte) {
	var event IssueCommentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Errorw("failed to parse issue_comment payload", "error", err)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch strings.ToLower(event.Action) {
	case "created", "edited":
	default:
		w.WriteHeader(http.StatusOK)
		return
	}
	// Comments on plain issues have no pull request to validate.
	if event.Issue.PullRequest == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if !s.rateLimiter.Allow(event.Repository.FullName) {
		s.log.Infow("rate limit exceeded", "repository", event.Repository.FullName)
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	// Validate whatever head is current; the comment does not carry a SHA.
	s.startValidation(event.Installation.ID,
		event.Repository.Owner.Login, event.Repository.Name,
		event.Issue.Number, "")
	w.WriteHeader(http.StatusAccepted)
}

// handleSignature records a CLA signature and kicks off revalidation of any
// pull requests blocked on the signer.
func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	var req SignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Login == "" {
		http.Error(w, "login is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sig, err := s.store.RecordSignature(ctx, signatures.Contact{
		GitHubUsername: req.Login,
		Email:          req.Email,
		Name:           req.Name,
	}, s.cfg.CLAVersion)
	if err != nil {
		s.log.Errorw("failed to record signature", "login", req.Login, "error", err)
		http.Error(w, "failed to record signature", http.StatusInternalServerError)
		return
	}
	s.log.Infow("signature recorded", "login", req.Login, "version", sig.CLAVersion)

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()
		if _, err := s.revalidator.OnSignature(ctx, req.Login); err != nil {
			s.log.Errorw("revalidation failed", "login", req.Login, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"login":   sig.GitHubUsername,
		"version": sig.CLAVersion,
	})
}

// startValidation launches one background validation pass for a single PR.
func (s *Server) startValidation(installationID int64, owner, repo string, number int, headSHA string) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()

		client, err := s.clients.InstallationClient(ctx, installationID)
		if err != nil {
			s.log.Errorw("installation client unavailable",
				"installation", installationID, "repo", owner+"/"+repo, "error", err)
			return
		}

		s.engine.Validate(ctx, []validation.Target{{
			Owner:   owner,
			Repo:    repo,
			Number:  number,
			HeadSHA: headSHA,
			Client:  client,
		}})
	}()
}
