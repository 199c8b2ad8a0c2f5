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
	"bytes"
	"context"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clagate/clagate/internal/signatures"
	"github.com/clagate/clagate/internal/validation"
)

type fakeEngine struct {
	mu      sync.Mutex
	targets []validation.Target
}

func (f *fakeEngine) Validate(_ context.Context, targets []validation.Target) []validation.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, targets...)
	return make([]validation.Result, len(targets))
}

func (f *fakeEngine) seen() []validation.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]validation.Target(nil), f.targets...)
}

type fakeRevalidator struct {
	mu      sync.Mutex
	signers []string
}

func (f *fakeRevalidator) OnSignature(_ context.Context, signer string) ([]validation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signers = append(f.signers, signer)
	return nil, nil
}

type fakeClients struct{}

func (fakeClients) InstallationClient(context.Context, int64) (*gh.Client, error) {
	return gh.NewClient(nil), nil
}

const testSecret = "s3cret"

func newTestServer(t *testing.T) (*Server, *fakeEngine, *fakeRevalidator, *signatures.MemoryStore) {
	t.Helper()
	engine := &fakeEngine{}
	reval := &fakeRevalidator{}
	store := signatures.NewMemoryStore()
	srv := NewServer(Config{
		WebhookSecret: testSecret,
		CLAVersion:    "1.0",
		JobTimeout:    5 * time.Second,
	}, fakeClients{}, engine, reval, store, zaptest.NewLogger(t).Sugar())
	return srv, engine, reval, store
}

func deliver(t *testing.T, srv *Server, event string, payload []byte, signed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-GitHub-Event", event)
	if signed {
		req.Header.Set("X-Hub-Signature-256", sign(t, sha256.New, "sha256=", testSecret, payload))
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	srv, engine, _, _ := newTestServer(t)

	payload := pullRequestPayload("opened")
	rec := deliver(t, srv, "pull_request", payload, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	srv.jobs.Wait()
	assert.Empty(t, engine.seen())
}

func TestWebhookPullRequestOpenedStartsValidation(t *testing.T) {
	srv, engine, _, _ := newTestServer(t)

	rec := deliver(t, srv, "pull_request", pullRequestPayload("opened"), true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	srv.jobs.Wait()
	targets := engine.seen()
	require.Len(t, targets, 1)
	assert.Equal(t, "acme", targets[0].Owner)
	assert.Equal(t, "widget", targets[0].Repo)
	assert.Equal(t, 1, targets[0].Number)
	assert.Equal(t, "abc123", targets[0].HeadSHA)
}

func TestWebhookIgnoresUnhandledPullRequestActions(t *testing.T) {
	srv, engine, _, _ := newTestServer(t)

	for _, action := range []string{"closed", "labeled", "assigned"} {
		rec := deliver(t, srv, "pull_request", pullRequestPayload(action), true)
		assert.Equal(t, http.StatusOK, rec.Code, "action %q", action)
	}

	srv.jobs.Wait()
	assert.Empty(t, engine.seen())
}

func TestWebhookIssueCommentOnPullRequest(t *testing.T) {
	srv, engine, _, _ := newTestServer(t)

	payload := []byte(`{
		"action": "created",
		"issue": {"number": 7, "pull_request": {"url": "https://api.github.com/repos/acme/widget/pulls/7"}},
		"repository": {"full_name": "acme/widget", "name": "widget", "owner": {"login": "acme"}},
		"installation": {"id": 11}
	}`)
	rec := deliver(t, srv, "issue_comment", payload, true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	srv.jobs.Wait()
	targets := engine.seen()
	require.Len(t, targets, 1)
	assert.Equal(t, 7, targets[0].Number)
	assert.Empty(t, targets[0].HeadSHA, "comment events validate the current head")
}

func TestWebhookIgnoresPlainIssueComments(t *testing.T) {
	srv, engine, _, _ := newTestServer(t)

	payload := []byte(`{
		"action": "created",
		"issue": {"number": 7},
		"repository": {"full_name": "acme/widget", "name": "widget", "owner": {"login": "acme"}},
		"installation": {"id": 11}
	}`)
	rec := deliver(t, srv, "issue_comment", payload, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.jobs.Wait()
	assert.Empty(t, engine.seen())
}

func TestWebhookPingAndUnknownEvents(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := deliver(t, srv, "ping", []byte(`{"zen":"Keep it logically awesome."}`), true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = deliver(t, srv, "push", []byte(`{}`), true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignatureEndpointRecordsAndRevalidates(t *testing.T) {
	srv, _, reval, store := newTestServer(t)

	body := []byte(`{"login": "bob", "email": "bob@example.com", "name": "Bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/signatures", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login":"bob"`)

	signed, err := store.LookupSignatures(context.Background(), []string{"bob"})
	require.NoError(t, err)
	assert.Len(t, signed, 1)

	srv.jobs.Wait()
	reval.mu.Lock()
	defer reval.mu.Unlock()
	assert.Equal(t, []string{"bob"}, reval.signers)
}

func TestSignatureEndpointRequiresLogin(t *testing.T) {
	srv, _, reval, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/signatures", bytes.NewReader([]byte(`{"email":"x@y.z"}`)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	srv.jobs.Wait()
	assert.Empty(t, reval.signers)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	assert.True(t, rl.Allow("acme/widget"))
	assert.True(t, rl.Allow("acme/widget"))
	assert.False(t, rl.Allow("acme/widget"), "bucket exhausted inside the window")
	assert.True(t, rl.Allow("acme/gadget"), "buckets are per repository")
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	require.True(t, rl.Allow("acme/widget"))
	require.False(t, rl.Allow("acme/widget"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("acme/widget"), "tokens refill after the window")
}

func pullRequestPayload(action string) []byte {
	return []byte(`{
		"action": "` + action + `",
		"number": 1,
		"pull_request": {"state": "open", "head": {"ref": "feature", "sha": "abc123"}, "base": {"ref": "main"}},
		"repository": {"full_name": "acme/widget", "name": "widget", "owner": {"login": "acme"}},
		"installation": {"id": 11}
	}`)
}
