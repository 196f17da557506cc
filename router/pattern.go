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
	"regexp"
	"strconv"
	"strings"
)

// paramKey describes one named or positional capture in a compiled pattern.
type paramKey struct {
	name     string
	modifier byte // 0, '?', '+', or '*'
}

// routePattern is a compiled path pattern, ready to be matched against
// incoming request paths.
//
// Patterns compile once, at route-registration time, and are matched many
// times at request time. Compilation failures are configuration errors
// (Router.Use, UseError and the method registrars panic with them) and
// never surface at request time.
type routePattern struct {
	raw  string
	re   *regexp.Regexp
	keys []paramKey
	// end is true for terminal routes (path must match exactly) and false
	// for middleware-style prefix matches, where anything after the
	// matched prefix is carried forward as the remaining path.
	end bool
}

// patternOptions controls how a pattern is compiled.
type patternOptions struct {
	caseSensitive bool
	strict        bool
	end           bool
}

// compilePattern compiles pattern into a routePattern.
//
// Grammar (see SPEC_FULL.md §5 / spec.md §4.1):
//
//	/users/:id         -> named parameter, one path segment
//	/users/:id?        -> optional named parameter
//	/files/:path+       -> one-or-more segments, joined with "/"
//	/files/:path*       -> zero-or-more segments, joined with "/"
//	/files/*            -> unnamed wildcard, captured as key "0", "1", ...
//	/users/:id(\\d+)    -> named parameter constrained by a custom regex
//
// A literal ":" or "*" can be matched by escaping it with a backslash.
func compilePattern(pattern string, opts patternOptions) (*routePattern, error) {
	if pattern == "" {
		pattern = "/"
	}

	var (
		b        strings.Builder
		keys     []paramKey
		wildcard int
		i        int
	)
	b.WriteString("^")

	runes := []rune(pattern)
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes):
			b.WriteString(regexp.QuoteMeta(string(runes[i+1])))
			i += 2
		case c == ':':
			i++
			start := i
			for i < len(runes) && isParamNameRune(runes[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("%w in pattern %q", ErrEmptyParamName, pattern)
			}
			name := string(runes[start:i])

			// Optional custom constraint: :name(regex)
			constraint := ""
			if i < len(runes) && runes[i] == '(' {
				depth := 1
				j := i + 1
				for j < len(runes) && depth > 0 {
					if runes[j] == '(' {
						depth++
					} else if runes[j] == ')' {
						depth--
					}
					j++
				}
				if depth != 0 {
					return nil, fmt.Errorf("%w in pattern %q", ErrUnbalancedGroup, pattern)
				}
				constraint = string(runes[i+1 : j-1])
				i = j
			}

			var modifier byte
			if i < len(runes) && isModifierRune(runes[i]) {
				modifier = byte(runes[i])
				i++
			}

			keys = append(keys, paramKey{name: name, modifier: modifier})
			if modifier == '?' || modifier == '*' {
				// The group carries its own leading "/", so the segment
				// can be omitted together with its slash.
				if s := b.String(); strings.HasSuffix(s, "/") {
					b.Reset()
					b.WriteString(s[:len(s)-1])
				}
			}
			b.WriteString(segmentGroup(constraint, modifier))
		case c == '*':
			i++
			name := strconv.Itoa(wildcard)
			wildcard++
			keys = append(keys, paramKey{name: name, modifier: '*'})
			b.WriteString(`(.*)`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}

	if !opts.strict {
		// Tolerate an optional trailing slash unless strict routing is on.
		b.WriteString(`/?`)
	}
	if opts.end {
		b.WriteString("$")
	}

	flags := ""
	if !opts.caseSensitive {
		flags = "(?i)"
	}

	re, err := regexp.Compile(flags + b.String())
	if err != nil {
		return nil, fmt.Errorf("webway: invalid pattern %q: %w", pattern, err)
	}

	return &routePattern{raw: pattern, re: re, keys: keys, end: opts.end}, nil
}

// isParamNameRune reports whether r may appear in a parameter name.
func isParamNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isModifierRune(r rune) bool {
	return r == '?' || r == '+' || r == '*'
}

// segmentGroup returns the regex group text for one parameter, given an
// optional custom constraint and modifier.
func segmentGroup(constraint string, modifier byte) string {
	body := `[^/]+`
	if constraint != "" {
		body = constraint
	}
	switch modifier {
	case '?':
		return `(?:/(` + body + `))?`
	case '+':
		if constraint == "" {
			return `((?:[^/]+(?:/[^/]+)*))`
		}
		return `((?:` + body + `)(?:/(?:` + body + `))*)`
	case '*':
		if constraint == "" {
			return `(?:/([^/]+(?:/[^/]+)*))?`
		}
		return `(?:/((?:` + body + `)(?:/(?:` + body + `))*))?`
	default:
		return `(` + body + `)`
	}
}

// paramValue is one extracted path parameter.
type paramValue struct {
	Name  string
	Value string
}

// match attempts to match path against the compiled pattern. When the
// pattern is a prefix match (end == false), rest is the unmatched suffix of
// path that should be forwarded to nested dispatch (mount-strip, see
// SPEC_FULL.md §7).
func (p *routePattern) match(path string) (params []paramValue, rest string, ok bool) {
	loc := p.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, "", false
	}

	if len(p.keys) > 0 {
		params = make([]paramValue, 0, len(p.keys))
		for i, k := range p.keys {
			lo, hi := loc[2+2*i], loc[2+2*i+1]
			if lo < 0 || hi < 0 {
				// Optional parameter with no matching segment: the key is
				// absent, not present with an empty value. A zero-or-more
				// parameter with no segments is present with an empty value.
				if k.modifier == '*' {
					params = append(params, paramValue{Name: k.name})
				}
				continue
			}
			params = append(params, paramValue{Name: k.name, Value: path[lo:hi]})
		}
	}

	matchedEnd := loc[1]
	if !p.end {
		// A trailing "/" consumed by the match stays with rest, so a
		// non-empty rest always starts with "/".
		if matchedEnd > 0 && path[matchedEnd-1] == '/' {
			matchedEnd--
		}
		rest = path[matchedEnd:]
		if rest != "" && !strings.HasPrefix(rest, "/") {
			// A prefix match must end on a path-segment boundary.
			return nil, "", false
		}
	}

	return params, rest, true
}
