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

import (
	"context"
	"crypto/rsa"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	// appTokenLifetime keeps App JWTs inside GitHub's 10-minute ceiling.
	appTokenLifetime = 9 * time.Minute
	// clockDrift backdates issued-at so minor skew against GitHub's clocks
	// does not invalidate a fresh token.
	clockDrift = time.Minute
	// refreshMargin is how long before expiry a cached token is considered
	// stale and re-minted.
	refreshMargin = time.Minute
)

// Authority mints GitHub App JWTs and exchanges them for installation access
// tokens. Tokens live only in process memory; a restart re-mints everything.
type Authority struct {
	appID      int64
	key        *rsa.PrivateKey
	baseURL    string
	reqTimeout time.Duration

	mu      sync.Mutex
	entries map[int64]*installationEntry

	appMu     sync.Mutex
	appJWT    string
	appExpiry time.Time
}

// installationEntry serializes token refresh per installation so concurrent
// callers never race a duplicate mint.
type installationEntry struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// New builds an Authority from the App id and its RSA private key in PEM
// form. Malformed key material is a ConfigError.
func New(appID int64, privateKeyPEM []byte, baseURL string, requestTimeout time.Duration) (*Authority, error) {
	if appID <= 0 {
		return nil, &ConfigError{Reason: "app id must be positive"}
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, &ConfigError{Reason: "parse app private key", Err: err}
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Authority{
		appID:      appID,
		key:        key,
		baseURL:    baseURL,
		reqTimeout: requestTimeout,
		entries:    make(map[int64]*installationEntry),
	}, nil
}

// AppToken returns a short-lived RS256 JWT identifying the App itself,
// re-signing only when the cached one is near expiry.
func (a *Authority) AppToken() (string, time.Time, error) {
	a.appMu.Lock()
	defer a.appMu.Unlock()

	now := time.Now()
	if a.appJWT != "" && now.Before(a.appExpiry.Add(-refreshMargin)) {
		return a.appJWT, a.appExpiry, nil
	}

	expiry := now.Add(appTokenLifetime)
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-clockDrift)),
		ExpiresAt: jwt.NewNumericDate(expiry),
		Issuer:    strconv.FormatInt(a.appID, 10),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	if err != nil {
		return "", time.Time{}, &ConfigError{Reason: "sign app token", Err: err}
	}

	a.appJWT, a.appExpiry = signed, expiry
	return signed, expiry, nil
}

// InstallationToken returns a bearer token scoped to one installation. A
// cached token is reused until refreshMargin before its expiry; otherwise a
// fresh App JWT is exchanged at the installation-token endpoint. A non-2xx
// exchange is an AuthError.
func (a *Authority) InstallationToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	entry := a.entry(installationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.token != "" && time.Now().Before(entry.expiry.Add(-refreshMargin)) {
		return entry.token, entry.expiry, nil
	}

	client, err := a.AppClient()
	if err != nil {
		return "", time.Time{}, err
	}
	tok, _, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", time.Time{}, &AuthError{InstallationID: installationID, Err: err}
	}

	entry.token = tok.GetToken()
	entry.expiry = tok.GetExpiresAt().Time
	return entry.token, entry.expiry, nil
}

// AppClient returns a go-github client that authenticates as the App itself
// (JWT bearer). Used for the /app/* endpoints only.
func (a *Authority) AppClient() (*gh.Client, error) {
	token, _, err := a.AppToken()
	if err != nil {
		return nil, err
	}
	return a.newClient(token)
}

// InstallationClient returns a go-github client authorized for one
// installation's repositories. The token is refreshed on every access, so
// callers should not hold the client across long idle periods.
func (a *Authority) InstallationClient(ctx context.Context, installationID int64) (*gh.Client, error) {
	token, _, err := a.InstallationToken(ctx, installationID)
	if err != nil {
		return nil, err
	}
	return a.newClient(token)
}

func (a *Authority) entry(installationID int64) *installationEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[installationID]
	if !ok {
		e = &installationEntry{}
		a.entries[installationID] = e
	}
	return e
}

func (a *Authority) newClient(token string) (*gh.Client, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Timeout:   a.reqTimeout,
		Transport: &oauth2.Transport{Source: src},
	}
	client := gh.NewClient(httpClient)
	if a.baseURL != "" {
		base := a.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, &ConfigError{Reason: "parse api base url", Err: err}
		}
		client.BaseURL = u
	}
	return client, nil
}
