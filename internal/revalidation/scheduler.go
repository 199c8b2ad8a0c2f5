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

package revalidation

import (
	"context"
	"strings"
	"sync"

	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ghapi "github.com/clagate/clagate/internal/github"
	"github.com/clagate/clagate/internal/githubapp"
	"github.com/clagate/clagate/internal/validation"
)

// Scheduler finds pull requests previously blocked on a signer and re-runs
// validation when that signer records a CLA signature.
type Scheduler struct {
	auth          *githubapp.Authority
	engine        *validation.Engine
	statusContext string
	pageSize      int
	maxParallel   int
	log           *zap.SugaredLogger
}

// NewScheduler builds a Scheduler. statusContext must match the context the
// validation engine writes, since it is how blocked PRs are recognized.
func NewScheduler(auth *githubapp.Authority, engine *validation.Engine, statusContext string, pageSize, maxParallel int, log *zap.SugaredLogger) *Scheduler {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Scheduler{
		auth:          auth,
		engine:        engine,
		statusContext: statusContext,
		pageSize:      pageSize,
		maxParallel:   maxParallel,
		log:           log,
	}
}

// OnSignature searches every repository reachable by the App's installations
// for open pull requests whose CLA status is failure and whose commit
// authors include the signer, then re-validates that set.
//
// Signing does not identify a pull request, so the search fans out over
// installations, repositories, and PRs under a concurrency cap; scan
// failures in one branch are logged and do not stop the others.
func (s *Scheduler) OnSignature(ctx context.Context, signer string) ([]validation.Result, error) {
	installs, err := s.auth.Installations(ctx, s.pageSize, s.maxParallel)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var targets []validation.Target

	g := new(errgroup.Group)
	g.SetLimit(s.maxParallel)
	for _, inst := range installs {
		g.Go(func() error {
			found, err := s.scanInstallation(ctx, inst, signer)
			if err != nil {
				s.log.Errorw("installation scan failed",
					"installation", inst.ID, "account", inst.AccountLogin, "error", err)
				return nil
			}
			mu.Lock()
			targets = append(targets, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(targets) == 0 {
		s.log.Infow("no blocked pull requests found for signer", "signer", signer)
		return nil, nil
	}

	s.log.Infow("revalidating pull requests", "signer", signer, "count", len(targets))
	return s.engine.Validate(ctx, targets), nil
}

func (s *Scheduler) scanInstallation(ctx context.Context, inst githubapp.Installation, signer string) ([]validation.Target, error) {
	client, err := s.auth.InstallationClient(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	repos, err := s.auth.Repositories(ctx, inst.ID, s.pageSize, s.maxParallel)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var targets []validation.Target

	g := new(errgroup.Group)
	g.SetLimit(s.maxParallel)
	for _, repo := range repos {
		g.Go(func() error {
			found, err := s.scanRepository(ctx, client, repo, signer)
			if err != nil {
				s.log.Warnw("repository scan failed",
					"repo", repo.Owner+"/"+repo.Name, "error", err)
				return nil
			}
			mu.Lock()
			targets = append(targets, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return targets, nil
}

func (s *Scheduler) scanRepository(ctx context.Context, client *gh.Client, repo githubapp.Repository, signer string) ([]validation.Target, error) {
	prs, err := ghapi.FetchAll(ctx, "open pull requests", s.maxParallel,
		func(ctx context.Context, page int) ([]*gh.PullRequest, *gh.Response, error) {
			return client.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
				State:       "open",
				ListOptions: gh.ListOptions{Page: page, PerPage: s.pageSize},
			})
		})
	if err != nil {
		return nil, err
	}

	var targets []validation.Target
	for _, pr := range prs {
		blocked, err := s.blockedOnSigner(ctx, client, repo, pr, signer)
		if err != nil {
			s.log.Warnw("pull request scan failed",
				"repo", repo.Owner+"/"+repo.Name, "pr", pr.GetNumber(), "error", err)
			continue
		}
		if blocked {
			targets = append(targets, validation.Target{
				Owner:   repo.Owner,
				Repo:    repo.Name,
				Number:  pr.GetNumber(),
				HeadSHA: pr.GetHead().GetSHA(),
				Client:  client,
			})
		}
	}
	return targets, nil
}

// blockedOnSigner reports whether the PR's current CLA status is failure and
// the signer authored one of its commits.
func (s *Scheduler) blockedOnSigner(ctx context.Context, client *gh.Client, repo githubapp.Repository, pr *gh.PullRequest, signer string) (bool, error) {
	combined, _, err := client.Repositories.GetCombinedStatus(ctx, repo.Owner, repo.Name,
		pr.GetHead().GetSHA(), &gh.ListOptions{PerPage: s.pageSize})
	if err != nil {
		return false, ghapi.WrapError("combined status", err)
	}

	failed := false
	for _, st := range combined.Statuses {
		if st.GetContext() == s.statusContext && st.GetState() == string(validation.StatusFailure) {
			failed = true
			break
		}
	}
	if !failed {
		return false, nil
	}

	commits, err := ghapi.FetchAll(ctx, "pull request commits", s.maxParallel,
		func(ctx context.Context, page int) ([]*gh.RepositoryCommit, *gh.Response, error) {
			return client.PullRequests.ListCommits(ctx, repo.Owner, repo.Name, pr.GetNumber(),
				&gh.ListOptions{Page: page, PerPage: s.pageSize})
		})
	if err != nil {
		return false, err
	}

	for _, c := range commits {
		if strings.EqualFold(c.GetAuthor().GetLogin(), signer) {
			return true, nil
		}
	}
	return false, nil
}
