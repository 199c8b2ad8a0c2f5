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

// Package githubapp is the token authority for the GitHub App identity.
//
// Two token classes exist. The App JWT is an RS256-signed claim with a
// lifetime under ten minutes, used only against /app/* endpoints as a Bearer
// credential. Installation access tokens are exchanged from a fresh App JWT
// at POST /app/installations/{id}/access_tokens, last about an hour, and
// authorize regular REST calls against that installation's repositories.
//
// Both classes are cached in memory with a safety margin before expiry.
// Refresh is serialized per installation so concurrent validation passes
// never mint duplicate tokens. Tokens are never shared across installations
// and never persisted.
package githubapp
