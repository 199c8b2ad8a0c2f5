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

// Package revalidation reacts to freshly recorded CLA signatures.
//
// A signature record does not say which pull request prompted it, so the
// scheduler has to search: installations, their repositories, each repo's
// open pull requests, and each PR's current combined status. Only PRs that
// are failing the CLA status and include the signer among their commit
// authors get re-validated. The fan-out is capped to stay under GitHub's
// secondary rate limits.
package revalidation
