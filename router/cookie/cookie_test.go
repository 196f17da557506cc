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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultipleCookies(t *testing.T) {
	t.Parallel()

	got := Parse("session=abc123; theme=dark")
	assert.Equal(t, "abc123", got["session"])
	assert.Equal(t, "dark", got["theme"])
}

func TestParseEmptyHeader(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Parse(""))
}

func TestMarshalUnmarshalJSONCookie(t *testing.T) {
	t.Parallel()

	type prefs struct {
		Theme string `json:"theme"`
	}

	encoded, err := Marshal(prefs{Theme: "dark"})
	require.NoError(t, err)
	assert.Contains(t, encoded, "j:")

	var decoded prefs
	ok, err := Unmarshal(encoded, &decoded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", decoded.Theme)
}

func TestUnmarshalRejectsNonJSONCookie(t *testing.T) {
	t.Parallel()

	ok, err := Unmarshal("plainvalue", &struct{}{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signed := Sign("user-42", "super-secret")
	value, ok := Verify(signed, "super-secret")
	require.True(t, ok)
	assert.Equal(t, "user-42", value)
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	t.Parallel()

	signed := Sign("user-42", "super-secret")
	tampered := signed[:len(signed)-1] + "x"

	_, ok := Verify(tampered, "super-secret")
	assert.False(t, ok, "a single flipped character in the signature must fail verification")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signed := Sign("user-42", "secret-one")
	_, ok := Verify(signed, "secret-two")
	assert.False(t, ok)
}

func TestVerifyRejectsUnsignedValue(t *testing.T) {
	t.Parallel()

	_, ok := Verify("user-42", "super-secret")
	assert.False(t, ok)
}

func TestParseSignedSeparatesPlainAndVerifiedSigned(t *testing.T) {
	t.Parallel()

	good := Sign("session-id", "secret")
	bad := Sign("hijacked", "wrong-secret")
	header := "plain=hello; signed_good=" + good + "; signed_bad=" + bad

	plain, signed := ParseSigned(header, "secret")
	assert.Equal(t, "hello", plain["plain"])
	assert.Equal(t, "session-id", signed["signed_good"])
	_, present := signed["signed_bad"]
	assert.False(t, present, "a cookie that fails verification must be dropped, not passed through unsigned")
	_, presentPlain := plain["signed_bad"]
	assert.False(t, presentPlain)
}
