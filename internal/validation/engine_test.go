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

package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clagate/clagate/internal/contributors"
	"github.com/clagate/clagate/internal/signatures"
)

// fakeRepo is an in-memory pull request plus the GitHub write surfaces the
// engine touches, served over httptest.
type fakeRepo struct {
	mu sync.Mutex

	prState string
	headSHA string

	commits       []map[string]any
	collaborators []string

	statuses      []string // states in write order
	labelsAdded   []string
	labelsRemoved []string
	comments      []string // comment bodies, attributed to the bot login
}

func userCommit(login string) map[string]any {
	return map[string]any{
		"sha":    "sha-" + login,
		"author": map[string]any{"login": login},
	}
}

func anonymousCommit(name, email string) map[string]any {
	return map[string]any{
		"sha": "sha-" + email,
		"commit": map[string]any{
			"author": map[string]any{"name": name, "email": email},
		},
	}
}

func (f *fakeRepo) serve(t *testing.T) *gh.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widget/pulls/1", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"number": 1,
			"state":  f.prState,
			"head":   map[string]any{"sha": f.headSHA},
		})
	})
	mux.HandleFunc("GET /repos/acme/widget/pulls/1/commits", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.commits)
	})
	mux.HandleFunc("GET /repos/acme/widget/collaborators", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		users := make([]map[string]any, 0, len(f.collaborators))
		for _, login := range f.collaborators {
			users = append(users, map[string]any{"login": login})
		}
		_ = json.NewEncoder(w).Encode(users)
	})
	mux.HandleFunc("POST /repos/acme/widget/statuses/{sha}", func(w http.ResponseWriter, r *http.Request) {
		var status struct {
			State string `json:"state"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&status))
		f.mu.Lock()
		f.statuses = append(f.statuses, status.State)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"state": status.State})
	})
	mux.HandleFunc("POST /repos/acme/widget/issues/1/labels", func(w http.ResponseWriter, r *http.Request) {
		var labels []string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&labels))
		f.mu.Lock()
		f.labelsAdded = append(f.labelsAdded, labels...)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("DELETE /repos/acme/widget/issues/1/labels/{label}", func(w http.ResponseWriter, r *http.Request) {
		label := r.PathValue("label")
		f.mu.Lock()
		removed := false
		for _, l := range f.labelsAdded {
			if l == label {
				removed = true
			}
		}
		if removed {
			f.labelsRemoved = append(f.labelsRemoved, label)
		}
		f.mu.Unlock()
		if !removed {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Label does not exist"}`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("GET /repos/acme/widget/issues/1/comments", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]map[string]any, 0, len(f.comments))
		for i, body := range f.comments {
			out = append(out, map[string]any{
				"id":   i + 1,
				"body": body,
				"user": map[string]any{"login": "clagate[bot]"},
			})
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /repos/acme/widget/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		var comment struct {
			Body string `json:"body"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&comment))
		f.mu.Lock()
		f.comments = append(f.comments, comment.Body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"body": comment.Body})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := gh.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func newTestEngine(t *testing.T, store SignatureLookup) *Engine {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	resolver := contributors.NewResolver(100, 4, true, log)
	return NewEngine(resolver, store, Options{
		CLAURL:   "https://cla.example.com",
		BotLogin: "clagate[bot]",
	}, log)
}

func TestValidateAllInternalSucceeds(t *testing.T) {
	repo := &fakeRepo{
		prState:       "open",
		headSHA:       "abc123",
		commits:       []map[string]any{userCommit("alice")},
		collaborators: []string{"alice"},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())

	results := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, Client: client}})
	require.Len(t, results, 1)
	res := results[0]

	require.NoError(t, res.Err)
	assert.False(t, res.Skipped)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Missing)
	assert.Equal(t, []string{"pending", "success"}, repo.statuses)
	assert.Contains(t, repo.labelsAdded, "cla:signed")
	assert.Empty(t, repo.comments, "no comment when nothing is missing")
}

func TestValidateSignedExternalSucceeds(t *testing.T) {
	repo := &fakeRepo{
		prState:       "open",
		headSHA:       "abc123",
		commits:       []map[string]any{userCommit("Bob")},
		collaborators: []string{"alice"},
	}
	client := repo.serve(t)

	store := signatures.NewMemoryStore()
	_, err := store.RecordSignature(context.Background(),
		signatures.Contact{GitHubUsername: "bob"}, "1.0")
	require.NoError(t, err)

	engine := newTestEngine(t, store)
	res := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, Client: client}})[0]

	require.NoError(t, res.Err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.SignedExternal, 1)
	assert.Empty(t, repo.comments)
}

func TestValidateUnsignedExternalFails(t *testing.T) {
	repo := &fakeRepo{
		prState:       "open",
		headSHA:       "abc123",
		commits:       []map[string]any{userCommit("bob")},
		collaborators: []string{"alice"},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())

	res := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, Client: client}})[0]

	require.NoError(t, res.Err)
	assert.Equal(t, StatusFailure, res.Status)
	assert.Len(t, res.Missing, 1)
	assert.Equal(t, []string{"pending", "failure"}, repo.statuses)
	assert.Contains(t, repo.labelsAdded, "cla:missing")
	require.Len(t, repo.comments, 1)
	assert.Contains(t, repo.comments[0], "@bob")
	assert.Contains(t, repo.comments[0], "https://cla.example.com")
}

func TestValidateCommentIsIdempotent(t *testing.T) {
	repo := &fakeRepo{
		prState: "open",
		headSHA: "abc123",
		commits: []map[string]any{userCommit("bob")},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())
	target := Target{Owner: "acme", Repo: "widget", Number: 1, Client: client}

	for range 3 {
		res := engine.Validate(context.Background(), []Target{target})[0]
		require.NoError(t, res.Err)
		assert.Equal(t, StatusFailure, res.Status)
	}

	assert.Len(t, repo.comments, 1, "repeated passes never stack comments")
}

func TestValidateUnknownCommitterAlwaysMissing(t *testing.T) {
	repo := &fakeRepo{
		prState: "open",
		headSHA: "abc123",
		commits: []map[string]any{anonymousCommit("Carol Smith", "carol@example.com")},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())

	res := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, Client: client}})[0]

	require.NoError(t, res.Err)
	assert.Equal(t, StatusFailure, res.Status)
	require.Len(t, repo.comments, 1)
	assert.Contains(t, repo.comments[0], "carol@example.com")
	assert.Contains(t, repo.comments[0], "no linked GitHub account")
}

func TestValidateSkipsStaleHead(t *testing.T) {
	repo := &fakeRepo{
		prState: "open",
		headSHA: "new456",
		commits: []map[string]any{userCommit("bob")},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())

	res := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, HeadSHA: "old123", Client: client}})[0]

	require.NoError(t, res.Err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "new456", res.HeadSHA)
	assert.Empty(t, repo.statuses, "a stale head gets no writes at all")
	assert.Empty(t, repo.comments)
}

func TestValidateSkipsClosedPullRequest(t *testing.T) {
	repo := &fakeRepo{
		prState: "closed",
		headSHA: "abc123",
		commits: []map[string]any{userCommit("bob")},
	}
	client := repo.serve(t)
	engine := newTestEngine(t, signatures.NewMemoryStore())

	res := engine.Validate(context.Background(),
		[]Target{{Owner: "acme", Repo: "widget", Number: 1, Client: client}})[0]

	require.NoError(t, res.Err)
	assert.True(t, res.Skipped)
	assert.Empty(t, repo.statuses)
}

func TestValidateIsolatesFailures(t *testing.T) {
	good := &fakeRepo{
		prState:       "open",
		headSHA:       "abc123",
		commits:       []map[string]any{userCommit("alice")},
		collaborators: []string{"alice"},
	}
	goodClient := good.serve(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"bad gateway"}`))
	}))
	defer broken.Close()
	brokenClient := gh.NewClient(nil)
	base, err := url.Parse(broken.URL + "/")
	require.NoError(t, err)
	brokenClient.BaseURL = base

	engine := newTestEngine(t, signatures.NewMemoryStore())
	results := engine.Validate(context.Background(), []Target{
		{Owner: "acme", Repo: "widget", Number: 1, Client: brokenClient},
		{Owner: "acme", Repo: "widget", Number: 1, Client: goodClient},
	})
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.Equal(t, StatusSuccess, results[1].Status)
}

func TestRenderCommentListsBothVariants(t *testing.T) {
	body := renderComment([]contributors.Contributor{
		contributors.GitHubUser{Username: "bob"},
		contributors.UnknownCommitter{Name: "Carol Smith", Email: "carol@example.com"},
	}, "https://cla.example.com")

	assert.True(t, strings.Contains(body, "- @bob\n"))
	assert.Contains(t, body, "Carol Smith <carol@example.com>")
	assert.Contains(t, body, "https://cla.example.com")
}
