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

import "fmt"

// ConfigError reports bad App credentials or key material. It is fatal at
// startup.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("githubapp: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("githubapp: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AuthError reports a failed token mint or exchange. It is fatal for the
// affected installation's current operation and retryable on the next
// attempt.
type AuthError struct {
	InstallationID int64
	Err            error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("githubapp: token exchange for installation %d failed: %v", e.InstallationID, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
