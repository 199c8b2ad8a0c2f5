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

// PullRequestEvent represents a GitHub pull_request webhook event.
type PullRequestEvent struct {
	Action       string       `json:"action"`
	Number       int          `json:"number"`
	PullRequest  PullRequest  `json:"pull_request"`
	Repository   Repository   `json:"repository"`
	Installation Installation `json:"installation"`
}

// IssueCommentEvent represents a GitHub issue_comment webhook event. The
// Issue carries a pull_request stub only when the comment sits on a PR.
type IssueCommentEvent struct {
	Action       string       `json:"action"`
	Issue        Issue        `json:"issue"`
	Repository   Repository   `json:"repository"`
	Installation Installation `json:"installation"`
}

// Issue contains the issue metadata a comment event carries.
type Issue struct {
	Number      int              `json:"number"`
	PullRequest *PullRequestLink `json:"pull_request,omitempty"`
}

// PullRequestLink marks an issue as backed by a pull request.
type PullRequestLink struct {
	URL string `json:"url"`
}

// PullRequest contains PR metadata.
type PullRequest struct {
	Head  Ref    `json:"head"`
	Base  Ref    `json:"base"`
	State string `json:"state"`
}

// Ref represents a git reference (branch).
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Repository contains repository metadata.
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    Owner  `json:"owner"`
}

// Owner represents the repository owner.
type Owner struct {
	Login string `json:"login"`
}

// Installation carries the App installation the event belongs to.
type Installation struct {
	ID int64 `json:"id"`
}

// SignatureRequest is the JSON body of POST /signatures.
type SignatureRequest struct {
	Login string `json:"login"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
