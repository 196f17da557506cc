// Copyright 2025 The Rivaas Authors
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

package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

const signedPrefix = "s:"

// Sign produces a signed cookie value in the wire format
// "s:<value>.<base64url(hmac-sha256(secret, value))>".
func Sign(value, secret string) string {
	mac := computeHMAC(value, secret)
	return signedPrefix + value + "." + base64.RawURLEncoding.EncodeToString(mac)
}

// Verify checks a signed cookie value against secret using a
// constant-time comparison (spec.md §9's explicit constant-time
// directive), returning the unsigned value and ok=true on success.
func Verify(signed, secret string) (value string, ok bool) {
	if !strings.HasPrefix(signed, signedPrefix) {
		return "", false
	}
	body := strings.TrimPrefix(signed, signedPrefix)
	idx := strings.LastIndexByte(body, '.')
	if idx < 0 {
		return "", false
	}
	value, sig := body[:idx], body[idx+1:]

	decoded, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	expected := computeHMAC(value, secret)
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return "", false
	}
	return value, true
}

// ParseSigned parses header into two maps: ordinary cookies, and signed
// cookies that verified successfully against secret (their value is the
// unsigned payload). Cookies that look signed but fail verification are
// dropped from both maps, matching the source ecosystem's
// fail-closed behavior for tampered cookies.
func ParseSigned(header, secret string) (cookies, signedCookies map[string]string) {
	cookies = make(map[string]string)
	signedCookies = make(map[string]string)
	for name, value := range Parse(header) {
		if strings.HasPrefix(value, signedPrefix) {
			if unsigned, ok := Verify(value, secret); ok {
				signedCookies[name] = unsigned
			}
			continue
		}
		cookies[name] = value
	}
	return cookies, signedCookies
}

func computeHMAC(value, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return mac.Sum(nil)
}
