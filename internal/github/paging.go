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

package github

import (
	"context"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"
)

// PageFunc fetches one page of a paginated collection. Implementations must
// apply the same page size to every request so the page count projected from
// the first response stays correct.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, *gh.Response, error)

// FetchAll retrieves a complete paginated collection. It issues the first
// page, reads the last-page number go-github parses out of the RFC 5988 Link
// header, fetches pages 2..N concurrently under maxParallel, and
// concatenates the results in page order. A response without a Link header
// is a single page.
//
// Any failed page fails the whole fetch and partial results are discarded;
// callers retry the entire operation.
func FetchAll[T any](ctx context.Context, resource string, maxParallel int, fetch PageFunc[T]) ([]T, error) {
	first, resp, err := fetch(ctx, 1)
	if err != nil {
		return nil, WrapError(resource, err)
	}
	if resp == nil || resp.LastPage <= 1 {
		return first, nil
	}

	if maxParallel < 1 {
		maxParallel = 1
	}

	pages := make([][]T, resp.LastPage+1)
	pages[1] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for page := 2; page <= resp.LastPage; page++ {
		g.Go(func() error {
			items, _, err := fetch(gctx, page)
			if err != nil {
				return WrapError(resource, err)
			}
			pages[page] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []T
	for _, items := range pages[1:] {
		all = append(all, items...)
	}
	return all, nil
}
