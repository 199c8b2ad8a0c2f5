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
	"fmt"
	"sort"
	"strings"
)

// Contributor is one pull-request commit author: either a GitHubUser or an
// UnknownCommitter. The two variants are sealed; classification and
// rendering sites switch exhaustively over them.
type Contributor interface {
	// Key is the identity used for set membership. GitHub usernames compare
	// case-insensitively; unknown committers key off name and email and can
	// never match a signature.
	Key() string

	isContributor()
}

// GitHubUser is a commit author with a linked GitHub account.
type GitHubUser struct {
	Username string
}

func (u GitHubUser) Key() string    { return "user:" + strings.ToLower(u.Username) }
func (u GitHubUser) String() string { return "@" + u.Username }
func (GitHubUser) isContributor()   {}

// UnknownCommitter is a commit author with no linked GitHub account, known
// only by the git author name and email.
type UnknownCommitter struct {
	Name  string
	Email string
}

func (c UnknownCommitter) Key() string {
	return fmt.Sprintf("committer:%s <%s>", strings.ToLower(c.Name), strings.ToLower(c.Email))
}
func (c UnknownCommitter) String() string  { return fmt.Sprintf("%s <%s>", c.Name, c.Email) }
func (UnknownCommitter) isContributor()    {}

// Set is a contributor set keyed by identity.
type Set map[string]Contributor

// Add inserts c, deduplicating by identity key.
func (s Set) Add(c Contributor) { s[c.Key()] = c }

// Contains reports membership by identity key.
func (s Set) Contains(c Contributor) bool {
	_, ok := s[c.Key()]
	return ok
}

// Values returns the members ordered by key, for deterministic iteration.
func (s Set) Values() []Contributor {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Contributor, 0, len(keys))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}
