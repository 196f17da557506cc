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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileTrustProxyBool(t *testing.T) {
	t.Parallel()

	p, err := compileTrustProxy(true)
	require.NoError(t, err)
	assert.True(t, p.trusts("1.2.3.4", 0))

	p, err = compileTrustProxy(false)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCompileTrustProxyHopCount(t *testing.T) {
	t.Parallel()

	p, err := compileTrustProxy(2)
	require.NoError(t, err)
	assert.True(t, p.trusts("10.0.0.1", 0))
	assert.True(t, p.trusts("10.0.0.2", 1))
	assert.False(t, p.trusts("10.0.0.3", 2))
}

func TestCompileTrustProxyNamedRanges(t *testing.T) {
	t.Parallel()

	p, err := compileTrustProxy("loopback")
	require.NoError(t, err)
	assert.True(t, p.trusts("127.0.0.1", 0))
	assert.False(t, p.trusts("8.8.8.8", 0))

	p, err = compileTrustProxy("uniquelocal,loopback")
	require.NoError(t, err)
	assert.True(t, p.trusts("192.168.1.5", 0))
	assert.True(t, p.trusts("127.0.0.1", 0))
}

func TestCompileTrustProxyCIDRList(t *testing.T) {
	t.Parallel()

	p, err := compileTrustProxy([]string{"203.0.113.0/24"})
	require.NoError(t, err)
	assert.True(t, p.trusts("203.0.113.42", 0))
	assert.False(t, p.trusts("198.51.100.1", 0))
}

func TestCompileTrustProxyCustomFunc(t *testing.T) {
	t.Parallel()

	called := false
	p, err := compileTrustProxy(TrustProxyFunc(func(addr string, hop int) bool {
		called = true
		return addr == "9.9.9.9"
	}))
	require.NoError(t, err)
	assert.True(t, p.trusts("9.9.9.9", 0))
	assert.True(t, called)
}

func TestCompileTrustProxyInvalidCIDR(t *testing.T) {
	t.Parallel()

	_, err := compileTrustProxy("not-a-cidr-or-name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCIDR)
}

func TestCompileTrustProxyUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := compileTrustProxy(3.14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTrustProxyPolicy)
}

func TestTrustsNilPredicate(t *testing.T) {
	t.Parallel()

	var p *trustProxyPredicate
	assert.False(t, p.trusts("1.2.3.4", 0))
}
