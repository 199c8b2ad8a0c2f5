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

// Package webhook is the inbound HTTP surface.
//
// POST /webhook receives GitHub deliveries, verifies the X-Hub-Signature
// HMAC when a secret is configured, and routes pull_request
// (opened/reopened/synchronize/edited) and issue_comment (created/edited)
// events into a background validation pass for the affected PR. Deliveries
// are acknowledged with 202 before validation finishes; GitHub redelivers
// on timeout otherwise.
//
// POST /signatures is the minimal intake called when someone signs the CLA:
// it records the signature and triggers revalidation of any pull requests
// blocked on that signer.
//
// A per-repository token bucket sheds webhook floods from a single repo
// without affecting the others.
package webhook
