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
	"fmt"
	"net"
	"strings"
)

// TrustProxyFunc is a custom predicate form of a trust-proxy policy: given
// an address and its distance (hopIndex) from the socket peer walking back
// through X-Forwarded-For, it reports whether that hop should be trusted.
type TrustProxyFunc func(addr string, hopIndex int) bool

var namedProxyRanges = map[string][]string{
	"loopback": {
		"127.0.0.0/8",
		"::1/128",
	},
	"linklocal": {
		"169.254.0.0/16",
		"fe80::/10",
	},
	"uniquelocal": {
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",
	},
}

// trustProxyPredicate is the compiled form of any of the five trust-proxy
// policy shapes spec.md §4.6 allows: bool, hop-count int, named ranges,
// CIDR list, or a custom predicate function.
type trustProxyPredicate struct {
	fn TrustProxyFunc
}

// compileTrustProxy compiles a trust-proxy policy value into a predicate.
//
// Accepted forms:
//   - bool: true trusts every hop, false trusts none
//   - int: trusts exactly that many hops counting back from the peer
//   - string: one of "loopback", "linklocal", "uniquelocal" (may be
//     combined, comma-separated), or a CIDR, or a comma-separated list of
//     any of the above
//   - []string: a list of CIDRs and/or named ranges
//   - TrustProxyFunc: used as-is
func compileTrustProxy(policy any) (*trustProxyPredicate, error) {
	switch v := policy.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		return &trustProxyPredicate{fn: func(string, int) bool { return true }}, nil
	case int:
		if v <= 0 {
			return nil, nil
		}
		hops := v
		return &trustProxyPredicate{fn: func(_ string, hopIndex int) bool { return hopIndex < hops }}, nil
	case string:
		return compileTrustProxyNames(splitNames(v))
	case []string:
		return compileTrustProxyNames(v)
	case TrustProxyFunc:
		return &trustProxyPredicate{fn: v}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidTrustProxyPolicy, policy)
	}
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func compileTrustProxyNames(names []string) (*trustProxyPredicate, error) {
	var cidrs []*net.IPNet
	for _, name := range names {
		if ranges, ok := namedProxyRanges[name]; ok {
			for _, cidr := range ranges {
				_, ipnet, err := net.ParseCIDR(cidr)
				if err != nil {
					return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCIDR, cidr, err)
				}
				cidrs = append(cidrs, ipnet)
			}
			continue
		}
		_, ipnet, err := net.ParseCIDR(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCIDR, name, err)
		}
		cidrs = append(cidrs, ipnet)
	}

	return &trustProxyPredicate{
		fn: func(addr string, _ int) bool {
			ip := net.ParseIP(addr)
			if ip == nil {
				return false
			}
			for _, ipnet := range cidrs {
				if ipnet.Contains(ip) {
					return true
				}
			}
			return false
		},
	}, nil
}

// trusts reports whether the given address, at the given hop distance from
// the socket peer, should be trusted under this policy. A nil predicate
// trusts nothing.
func (p *trustProxyPredicate) trusts(addr string, hopIndex int) bool {
	if p == nil || p.fn == nil {
		return false
	}
	return p.fn(addr, hopIndex)
}

// resolveClientIP returns the client IP for req, consulting
// X-Forwarded-For only when the socket peer is trusted.
func resolveClientIP(req *Request) string {
	peer := req.peerIP()
	if req.app == nil || req.app.trustProxy == nil {
		return peer
	}
	if !req.app.trustProxy.trusts(peer, 0) {
		return peer
	}
	chain := trustedForwardedChain(req)
	if len(chain) > 0 {
		return chain[0]
	}
	return peer
}

// trustedForwardedChain walks X-Forwarded-For from the socket peer
// backward toward the original client, extending trust one hop at a time.
// The first untrusted hop encountered (or the original client, if every
// hop is trusted) is taken as the real client address; everything from
// there up to the peer is returned, nearest-client-first.
func trustedForwardedChain(req *Request) []string {
	peer := req.peerIP()
	xff := req.raw.Header.Get("X-Forwarded-For")
	if xff == "" {
		return []string{peer}
	}

	raw := strings.Split(xff, ",")
	addrs := make([]string, 0, len(raw)+1)
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if a != "" {
			addrs = append(addrs, a)
		}
	}
	// addrs[0] is the original client, addrs[len-1] is the peer.
	addrs = append(addrs, peer)

	boundary := 0
	for i := len(addrs) - 1; i >= 0; i-- {
		hopIndex := len(addrs) - 1 - i
		boundary = i
		if !req.app.trustProxy.trusts(addrs[i], hopIndex) {
			break
		}
	}

	return addrs[boundary:]
}
