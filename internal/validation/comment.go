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

	"github.com/clagate/clagate/internal/contributors"
	ghapi "github.com/clagate/clagate/internal/github"
)

// ensureComment posts the explanatory comment unless this bot identity has
// already commented on the issue. The existing-comment check pages through
// all comments, so repeated webhook deliveries and revalidation passes never
// stack duplicates.
func (e *Engine) ensureComment(ctx context.Context, t Target, missing []contributors.Contributor) error {
	comments, err := ghapi.FetchAll(ctx, "issue comments", e.opts.MaxParallel,
		func(ctx context.Context, page int) ([]*gh.IssueComment, *gh.Response, error) {
			return t.Client.Issues.ListComments(ctx, t.Owner, t.Repo, t.Number,
				&gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{Page: page, PerPage: e.opts.PageSize}})
		})
	if err != nil {
		return err
	}

	for _, c := range comments {
		if strings.EqualFold(c.GetUser().GetLogin(), e.opts.BotLogin) {
			return nil
		}
	}

	body := renderComment(missing, e.opts.CLAURL)
	_, _, err = t.Client.Issues.CreateComment(ctx, t.Owner, t.Repo, t.Number,
		&gh.IssueComment{Body: gh.String(body)})
	return ghapi.WrapError("issue comment", err)
}

// renderComment builds the "please sign" comment body, handling both
// contributor variants.
func renderComment(missing []contributors.Contributor, claURL string) string {
	var b strings.Builder
	b.WriteString("Thanks for the contribution! Before this pull request can be merged, ")
	b.WriteString("the following contributors need to sign the Contributor License Agreement:\n\n")

	for _, c := range missing {
		switch v := c.(type) {
		case contributors.GitHubUser:
			fmt.Fprintf(&b, "- @%s\n", v.Username)
		case contributors.UnknownCommitter:
			fmt.Fprintf(&b, "- %s <%s> (commit author with no linked GitHub account; "+
				"add this email to a GitHub account, then sign)\n", v.Name, v.Email)
		}
	}

	fmt.Fprintf(&b, "\nYou can sign the agreement here: %s\n", claURL)
	return b.String()
}
