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
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"
)

// UpstreamError is any unexpected GitHub response, including transport
// failures and timeouts. It is surfaced to the caller and not retried
// automatically.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: unexpected status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("github: request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFoundError marks expected absence (missing repo, App not installed,
// label not present). Callers that need to distinguish it from other
// upstream failures check with IsNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github: %s not found", e.Resource)
}

// WrapError maps an error returned by a go-github call onto the package
// taxonomy. Nil passes through; 404s become NotFoundError; everything else,
// timeouts included, becomes UpstreamError.
func WrapError(resource string, err error) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusNotFound {
			return &NotFoundError{Resource: resource}
		}
		return &UpstreamError{
			StatusCode: ghErr.Response.StatusCode,
			Body:       ghErr.Message,
			Err:        err,
		}
	}

	return &UpstreamError{Err: err}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
