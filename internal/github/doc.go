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

// Package github holds the shared plumbing for GitHub REST access: the
// paginated fetch helper and the error taxonomy used across the service.
//
// Pagination follows the Link response header. The first page reveals the
// total page count; remaining pages are fetched in parallel with a bounded
// fan-out and concatenated in page order, so callers see the same ordering
// GitHub provides. There is no partial-success mode: one bad page fails the
// fetch.
//
// Errors fall into two buckets. NotFoundError marks expected absence and is
// a value callers branch on, not a failure to propagate blindly.
// UpstreamError covers everything else GitHub or the network can do wrong,
// timeouts included.
package github
