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
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clagate/clagate/internal/contributors"
	ghapi "github.com/clagate/clagate/internal/github"
)

// SignatureLookup is the slice of the signature store the engine consumes.
type SignatureLookup interface {
	LookupSignatures(ctx context.Context, usernames []string) (map[string]struct{}, error)
}

// Options tune how validation results are reported on GitHub.
type Options struct {
	// CLAURL is where contributors go to sign; used as the status target URL
	// and in the explanatory comment.
	CLAURL string
	// StatusContext names the commit status this service owns.
	StatusContext string
	// BotLogin is the App's bot identity; existing comments from this login
	// suppress re-posting.
	BotLogin string

	SignedLabel  string
	MissingLabel string

	PageSize    int
	MaxParallel int
}

func (o *Options) applyDefaults() {
	if o.StatusContext == "" {
		o.StatusContext = "clagate/cla"
	}
	if o.SignedLabel == "" {
		o.SignedLabel = "cla:signed"
	}
	if o.MissingLabel == "" {
		o.MissingLabel = "cla:missing"
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = 4
	}
}

// Engine computes CLA state for pull requests and applies the commit-status,
// label, and comment side effects.
type Engine struct {
	resolver *contributors.Resolver
	lookup   SignatureLookup
	opts     Options
	log      *zap.SugaredLogger
}

// NewEngine builds an Engine.
func NewEngine(resolver *contributors.Resolver, lookup SignatureLookup, opts Options, log *zap.SugaredLogger) *Engine {
	opts.applyDefaults()
	return &Engine{
		resolver: resolver,
		lookup:   lookup,
		opts:     opts,
		log:      log,
	}
}

// Validate runs the CLA state machine over each target under a bounded
// fan-out. Each pull request's pipeline is independent: one target's failure
// is recorded in its Result and never cancels or aborts the siblings.
func (e *Engine) Validate(ctx context.Context, targets []Target) []Result {
	results := make([]Result, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.MaxParallel)
	for i, t := range targets {
		g.Go(func() error {
			results[i] = e.validateOne(ctx, t)
			if err := results[i].Err; err != nil {
				e.log.Errorw("validation failed",
					"repo", t.OwnerRepo(), "pr", t.Number, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Engine) validateOne(ctx context.Context, t Target) Result {
	res := Result{Target: t}

	// GitHub is the source of truth: re-fetch the PR so the pass runs
	// against the current head, never a snapshot taken before a force-push.
	pr, _, err := t.Client.PullRequests.Get(ctx, t.Owner, t.Repo, t.Number)
	if err != nil {
		res.Err = ghapi.WrapError("pull request", err)
		return res
	}
	head := pr.GetHead().GetSHA()
	res.HeadSHA = head

	if pr.GetState() != "open" || (t.HeadSHA != "" && t.HeadSHA != head) {
		res.Skipped = true
		return res
	}

	// Pending is best effort; classification proceeds even if it fails.
	if _, err := e.writeStatus(ctx, t, head, StatusPending, "checking CLA signatures"); err != nil {
		e.log.Warnw("pending status write failed",
			"repo", t.OwnerRepo(), "pr", t.Number, "error", err)
	}

	cls, err := e.resolver.Classify(ctx, t.Client, t.Owner, t.Repo, t.Number)
	if err != nil {
		res.Err = err
		return res
	}

	var usernames []string
	var unknown []contributors.Contributor
	byName := make(map[string]contributors.Contributor)
	for _, c := range cls.External.Values() {
		switch v := c.(type) {
		case contributors.GitHubUser:
			usernames = append(usernames, v.Username)
			byName[strings.ToLower(v.Username)] = c
		case contributors.UnknownCommitter:
			unknown = append(unknown, c)
		}
	}

	signed := make(map[string]struct{})
	if len(usernames) > 0 {
		// One batched lookup per pass keeps signature-store load independent
		// of contributor count.
		signed, err = e.lookup.LookupSignatures(ctx, usernames)
		if err != nil {
			res.Err = fmt.Errorf("lookup signatures: %w", err)
			return res
		}
	}

	for _, name := range usernames {
		c := byName[strings.ToLower(name)]
		if _, ok := signed[strings.ToLower(name)]; ok {
			res.SignedExternal = append(res.SignedExternal, c)
		} else {
			res.Missing = append(res.Missing, c)
		}
	}
	// Unknown committers have no account to match a signature against; they
	// are always missing.
	res.Missing = append(res.Missing, unknown...)

	if len(res.Missing) == 0 {
		res.Status = StatusSuccess
		res.RawStatus, err = e.writeStatus(ctx, t, head, StatusSuccess, "all contributors have signed the CLA")
		if err != nil {
			res.Err = err
			return res
		}
		e.applyLabels(ctx, t, e.opts.SignedLabel, e.opts.MissingLabel)
		return res
	}

	res.Status = StatusFailure
	desc := fmt.Sprintf("%d contributor(s) still need to sign the CLA", len(res.Missing))
	res.RawStatus, err = e.writeStatus(ctx, t, head, StatusFailure, desc)
	if err != nil {
		res.Err = err
		return res
	}
	e.applyLabels(ctx, t, e.opts.MissingLabel, e.opts.SignedLabel)

	if err := e.ensureComment(ctx, t, res.Missing); err != nil {
		// A failed write leaves GitHub state stale until the next pass.
		e.log.Errorw("comment write failed",
			"repo", t.OwnerRepo(), "pr", t.Number, "error", err)
	}
	return res
}

func (e *Engine) writeStatus(ctx context.Context, t Target, sha string, state StatusState, desc string) (*gh.RepoStatus, error) {
	status := &gh.RepoStatus{
		State:       gh.String(string(state)),
		Description: gh.String(desc),
		Context:     gh.String(e.opts.StatusContext),
		TargetURL:   gh.String(e.opts.CLAURL),
	}
	_, _, err := t.Client.Repositories.CreateStatus(ctx, t.Owner, t.Repo, sha, status)
	if err != nil {
		return nil, ghapi.WrapError("commit status", err)
	}
	return status, nil
}

// applyLabels adds one label and removes the other. Label writes are
// reported state, not the decision itself, so failures are logged and the
// pass continues. A missing label on removal is the normal case.
func (e *Engine) applyLabels(ctx context.Context, t Target, add, remove string) {
	if _, _, err := t.Client.Issues.AddLabelsToIssue(ctx, t.Owner, t.Repo, t.Number, []string{add}); err != nil {
		e.log.Errorw("label add failed",
			"repo", t.OwnerRepo(), "pr", t.Number, "label", add,
			"error", ghapi.WrapError("issue label", err))
	}

	if _, err := t.Client.Issues.RemoveLabelForIssue(ctx, t.Owner, t.Repo, t.Number, remove); err != nil {
		wrapped := ghapi.WrapError("issue label", err)
		if !ghapi.IsNotFound(wrapped) {
			e.log.Errorw("label remove failed",
				"repo", t.OwnerRepo(), "pr", t.Number, "label", remove, "error", wrapped)
		}
	}
}
