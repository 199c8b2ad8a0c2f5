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

// Package validation computes CLA state for pull requests and keeps
// GitHub's commit status, labels, and comments in sync with it.
//
// Per pull request the pass runs a small state machine, terminal per head
// SHA: a best-effort pending status, contributor classification, one batched
// signature lookup, then either success (status success, cla:signed label
// on, cla:missing off) or failure (status failure, cla:missing on, and one
// idempotent explanatory comment). The engine re-fetches the PR before
// writing anything, so a head that moved since the caller looked is skipped
// rather than flapped.
//
// Batch validation is concurrency-capped and per-PR isolated: a failing
// pull request reports its error in its own Result and leaves the rest of
// the batch alone.
package validation
