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

package contributors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGitHubUserKeyCaseInsensitive(t *testing.T) {
	assert.Equal(t, GitHubUser{Username: "Alice"}.Key(), GitHubUser{Username: "alice"}.Key())
	assert.NotEqual(t, GitHubUser{Username: "alice"}.Key(), GitHubUser{Username: "bob"}.Key())
}

func TestUnknownCommitterKeyDistinctFromUser(t *testing.T) {
	user := GitHubUser{Username: "alice"}
	committer := UnknownCommitter{Name: "alice", Email: "alice@example.com"}
	assert.NotEqual(t, user.Key(), committer.Key())
}

func TestSetDeduplicatesByIdentity(t *testing.T) {
	s := Set{}
	s.Add(GitHubUser{Username: "Alice"})
	s.Add(GitHubUser{Username: "alice"})
	s.Add(UnknownCommitter{Name: "Bob", Email: "bob@example.com"})

	assert.Len(t, s, 2)
	assert.True(t, s.Contains(GitHubUser{Username: "ALICE"}))
	assert.True(t, s.Contains(UnknownCommitter{Name: "Bob", Email: "bob@example.com"}))
	assert.False(t, s.Contains(GitHubUser{Username: "carol"}))
}

func TestSetValuesDeterministicOrder(t *testing.T) {
	s := Set{}
	s.Add(GitHubUser{Username: "zed"})
	s.Add(GitHubUser{Username: "alice"})
	s.Add(GitHubUser{Username: "mallory"})

	first := s.Values()
	second := s.Values()
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}
