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
	gh "github.com/google/go-github/v66/github"

	"github.com/clagate/clagate/internal/contributors"
)

// StatusState is the state of the CLA commit status.
type StatusState string

const (
	// StatusPending is emitted while a validation pass is in flight.
	StatusPending StatusState = "pending"
	// StatusSuccess means every external contributor has signed.
	StatusSuccess StatusState = "success"
	// StatusFailure means at least one contributor still needs to sign.
	StatusFailure StatusState = "failure"
)

// Target is one pull request to validate, paired with a client already
// authorized for its repository.
//
// HeadSHA is the head the caller observed when it decided to validate. The
// engine re-fetches the PR and skips the pass when the head has moved, so a
// force-push mid-flight never causes status writes against a stale SHA.
// An empty HeadSHA means "validate whatever head is current".
type Target struct {
	Owner   string
	Repo    string
	Number  int
	HeadSHA string
	Client  *gh.Client
}

// OwnerRepo returns the owner/name form used in logs.
func (t Target) OwnerRepo() string { return t.Owner + "/" + t.Repo }

// Result is the outcome of one validation pass over one pull request. It is
// produced once per pass and never mutated.
type Result struct {
	Target Target

	// HeadSHA is the head actually validated (from the re-fetch).
	HeadSHA string

	// Skipped is set when the PR was closed or the caller's head was stale;
	// no writes were issued.
	Skipped bool

	// Status is the terminal state for this head, empty when skipped or
	// errored before the decision.
	Status StatusState

	Missing        []contributors.Contributor
	SignedExternal []contributors.Contributor

	// RawStatus is the payload written to the commit-status API.
	RawStatus *gh.RepoStatus

	Err error
}
