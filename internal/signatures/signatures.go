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

// Package signatures defines the contract with the CLA signature store. The
// store itself (schema, web form, OAuth) lives outside this service; the
// core only reads and writes through the Store interface.
package signatures

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Contact identifies the person recording a signature.
type Contact struct {
	GitHubUsername string `json:"login"`
	Email          string `json:"email"`
	Name           string `json:"name"`
}

// Signature is one recorded CLA acceptance.
type Signature struct {
	ContactID      string
	GitHubUsername string
	SignedOn       time.Time
	CLAVersion     string
}

// Store is the external signature-database collaborator. Uniqueness of
// GitHubUsername is the store's invariant, not the caller's.
type Store interface {
	// LookupSignatures returns the subset of usernames that have signed,
	// lowercased. One batched call per validation pass.
	LookupSignatures(ctx context.Context, usernames []string) (map[string]struct{}, error)

	// RecordSignature stores a signature for the contact, returning the
	// existing record when the username already signed.
	RecordSignature(ctx context.Context, contact Contact, version string) (*Signature, error)
}

// MemoryStore is a process-local Store used for wiring and tests.
type MemoryStore struct {
	mu     sync.Mutex
	byUser map[string]*Signature
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string]*Signature)}
}

// LookupSignatures implements Store.
func (m *MemoryStore) LookupSignatures(_ context.Context, usernames []string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	signed := make(map[string]struct{})
	for _, name := range usernames {
		key := strings.ToLower(name)
		if _, ok := m.byUser[key]; ok {
			signed[key] = struct{}{}
		}
	}
	return signed, nil
}

// RecordSignature implements Store.
func (m *MemoryStore) RecordSignature(_ context.Context, contact Contact, version string) (*Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(contact.GitHubUsername)
	if existing, ok := m.byUser[key]; ok {
		return existing, nil
	}

	sig := &Signature{
		ContactID:      uuid.NewString(),
		GitHubUsername: contact.GitHubUsername,
		SignedOn:       time.Now().UTC(),
		CLAVersion:     version,
	}
	m.byUser[key] = sig
	return sig, nil
}
