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

package contributors

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	ghapi "github.com/clagate/clagate/internal/github"
)

// botSuffix is the literal GitHub appends to machine-account logins.
const botSuffix = "[bot]"

// Resolver classifies pull-request commit authors by repository access.
type Resolver struct {
	pageSize    int
	maxParallel int
	trustBots   bool
	log         *zap.SugaredLogger
}

// NewResolver builds a Resolver. trustBots controls whether bot logins are
// treated as internal regardless of collaborator status, so automated merge
// commits do not block merges.
func NewResolver(pageSize, maxParallel int, trustBots bool, log *zap.SugaredLogger) *Resolver {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Resolver{
		pageSize:    pageSize,
		maxParallel: maxParallel,
		trustBots:   trustBots,
		log:         log,
	}
}

// Classification splits a pull request's commit authors into contributors
// with write access (internal) and everyone else (external).
type Classification struct {
	Internal Set
	External Set
}

// Classify fetches the PR's commits and the repository's collaborator list
// (both paged) and buckets every distinct commit author. The collaborator
// list already reflects org-level grants from GitHub's perspective.
func (r *Resolver) Classify(ctx context.Context, client *gh.Client, owner, repo string, number int) (*Classification, error) {
	commits, err := ghapi.FetchAll(ctx, "pull request commits", r.maxParallel,
		func(ctx context.Context, page int) ([]*gh.RepositoryCommit, *gh.Response, error) {
			return client.PullRequests.ListCommits(ctx, owner, repo, number,
				&gh.ListOptions{Page: page, PerPage: r.pageSize})
		})
	if err != nil {
		return nil, err
	}

	collaborators, err := ghapi.FetchAll(ctx, "repository collaborators", r.maxParallel,
		func(ctx context.Context, page int) ([]*gh.User, *gh.Response, error) {
			return client.Repositories.ListCollaborators(ctx, owner, repo,
				&gh.ListCollaboratorsOptions{ListOptions: gh.ListOptions{Page: page, PerPage: r.pageSize}})
		})
	if err != nil {
		return nil, err
	}

	collab := make(map[string]struct{}, len(collaborators))
	for _, u := range collaborators {
		collab[strings.ToLower(u.GetLogin())] = struct{}{}
	}

	cls := &Classification{Internal: Set{}, External: Set{}}
	for _, commit := range commits {
		c := fromCommit(commit)
		switch v := c.(type) {
		case GitHubUser:
			if _, ok := collab[strings.ToLower(v.Username)]; ok {
				cls.Internal.Add(c)
				continue
			}
			if r.trustBots && strings.HasSuffix(v.Username, botSuffix) {
				cls.Internal.Add(c)
				continue
			}
			cls.External.Add(c)
		case UnknownCommitter:
			cls.External.Add(c)
		}
	}

	r.log.Debugw("classified contributors",
		"repo", owner+"/"+repo,
		"pr", number,
		"internal", len(cls.Internal),
		"external", len(cls.External),
	)
	return cls, nil
}

// fromCommit maps one commit to its author identity. A commit whose author
// has no linked account falls back to the git name and email.
func fromCommit(rc *gh.RepositoryCommit) Contributor {
	if login := rc.GetAuthor().GetLogin(); login != "" {
		return GitHubUser{Username: login}
	}
	author := rc.GetCommit().GetAuthor()
	return UnknownCommitter{Name: author.GetName(), Email: author.GetEmail()}
}
