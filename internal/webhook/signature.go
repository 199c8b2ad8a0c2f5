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

package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
)

// ValidateSignature verifies the HMAC of a GitHub webhook payload. GitHub
// sends X-Hub-Signature (HMAC-SHA1) and, on newer deliveries,
// X-Hub-Signature-256; the SHA-256 variant is checked when present,
// otherwise the SHA-1 one. It returns true if the signature is valid.
//
// Both the matching signature header and the secret must be non-empty for
// validation to succeed.
func ValidateSignature(payload []byte, sha1Sig, sha256Sig, secret string) bool {
	if secret == "" {
		return false
	}
	if sha256Sig != "" {
		return validateHMAC(payload, sha256Sig, "sha256=", sha256.New, secret)
	}
	return validateHMAC(payload, sha1Sig, "sha1=", sha1.New, secret)
}

func validateHMAC(payload []byte, signature, prefix string, algo func() hash.Hash, secret string) bool {
	if signature == "" || !strings.HasPrefix(signature, prefix) {
		return false
	}

	receivedMAC := strings.TrimPrefix(signature, prefix)

	mac := hmac.New(algo, []byte(secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	// Constant-time comparison to prevent timing attacks.
	return hmac.Equal([]byte(receivedMAC), []byte(expectedMAC))
}
