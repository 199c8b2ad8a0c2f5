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

package githubapp

import (
	"context"

	gh "github.com/google/go-github/v66/github"

	ghapi "github.com/clagate/clagate/internal/github"
)

// Installation identifies one App installation on an org or user account.
type Installation struct {
	ID           int64
	AccountLogin string
}

// Repository is one repo reachable through an installation.
type Repository struct {
	Owner string
	Name  string
}

// Installations lists every installation of the App, paged through the
// /app/installations endpoint with the App JWT.
func (a *Authority) Installations(ctx context.Context, pageSize, maxParallel int) ([]Installation, error) {
	client, err := a.AppClient()
	if err != nil {
		return nil, err
	}

	raw, err := ghapi.FetchAll(ctx, "app installations", maxParallel,
		func(ctx context.Context, page int) ([]*gh.Installation, *gh.Response, error) {
			return client.Apps.ListInstallations(ctx, &gh.ListOptions{Page: page, PerPage: pageSize})
		})
	if err != nil {
		return nil, err
	}

	out := make([]Installation, 0, len(raw))
	for _, inst := range raw {
		out = append(out, Installation{
			ID:           inst.GetID(),
			AccountLogin: inst.GetAccount().GetLogin(),
		})
	}
	return out, nil
}

// Repositories lists the repositories one installation grants access to.
// The list is fetched lazily, on demand, and never cached.
func (a *Authority) Repositories(ctx context.Context, installationID int64, pageSize, maxParallel int) ([]Repository, error) {
	client, err := a.InstallationClient(ctx, installationID)
	if err != nil {
		return nil, err
	}

	raw, err := ghapi.FetchAll(ctx, "installation repositories", maxParallel,
		func(ctx context.Context, page int) ([]*gh.Repository, *gh.Response, error) {
			list, resp, err := client.Apps.ListRepos(ctx, &gh.ListOptions{Page: page, PerPage: pageSize})
			if list == nil {
				return nil, resp, err
			}
			return list.Repositories, resp, err
		})
	if err != nil {
		return nil, err
	}

	out := make([]Repository, 0, len(raw))
	for _, repo := range raw {
		out = append(out, Repository{
			Owner: repo.GetOwner().GetLogin(),
			Name:  repo.GetName(),
		})
	}
	return out, nil
}
