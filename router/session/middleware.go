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

package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rivaas-dev/webway/router"
	"github.com/rivaas-dev/webway/router/cookie"
)

const localsKey = "webway.session"

// Option configures Middleware.
type Option func(*config)

type config struct {
	name              string
	secret            string
	ttl               time.Duration
	saveUninitialized bool
	resave            bool
	rolling           bool
	path              string
}

func defaultConfig() config {
	return config{
		name:              "connect.sid",
		ttl:               24 * time.Hour,
		saveUninitialized: false,
		resave:            false,
		rolling:           false,
		path:              "/",
	}
}

// WithName sets the session cookie's name. Defaults to "connect.sid" to
// match the source ecosystem's conventional default (spec.md §6).
func WithName(name string) Option { return func(c *config) { c.name = name } }

// WithSecret sets the HMAC secret used to sign the session ID cookie.
// Required for any deployment that isn't purely local testing.
func WithSecret(secret string) Option { return func(c *config) { c.secret = secret } }

// WithTTL sets how long a session remains valid since its last access.
func WithTTL(ttl time.Duration) Option { return func(c *config) { c.ttl = ttl } }

// WithSaveUninitialized controls whether a new, never-modified session is
// still persisted to the store and given a cookie. Defaults to false,
// which avoids creating session records (and cookies) for
// anonymous/read-only requests.
func WithSaveUninitialized(enabled bool) Option {
	return func(c *config) { c.saveUninitialized = enabled }
}

// WithResave controls whether an unmodified session is re-persisted on
// every request regardless of whether it changed. Defaults to false.
func WithResave(enabled bool) Option { return func(c *config) { c.resave = enabled } }

// WithRolling controls whether the session's expiry is refreshed on every
// request, even when its data did not change. Defaults to false.
func WithRolling(enabled bool) Option { return func(c *config) { c.rolling = enabled } }

// WithCookiePath sets the Path attribute of the session cookie.
func WithCookiePath(path string) Option { return func(c *config) { c.path = path } }

// Middleware returns HandlerFunc implementing the session lifecycle
// described in SPEC_FULL.md §14: read the signed session-id cookie,
// load-or-create the session from store, attach it to the request, run
// the rest of the stack, then decide whether to persist and whether to
// (re)set the cookie, per the saveUninitialized/resave/rolling policy.
func Middleware(store Store, opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(req *router.Request, res *router.Response, next router.NextFunc) {
		sess := loadOrCreate(req, store, cfg)
		req.Locals()[localsKey] = sess

		next(nil)

		persist(res, store, cfg, sess)
	}
}

// FromRequest returns the Session attached to req by Middleware, or nil if
// Middleware has not run on this request.
func FromRequest(req *router.Request) *Session {
	if s, ok := req.Locals()[localsKey].(*Session); ok {
		return s
	}
	return nil
}

func loadOrCreate(req *router.Request, store Store, cfg config) *Session {
	signed := readSignedCookies(req, cfg)

	if id, ok := signed[cfg.name]; ok && id != "" {
		if rec, ok, _ := store.Get(id); ok {
			return &Session{id: id, data: cloneData(rec.Data), store: store, ttl: cfg.ttl}
		}
	}

	return &Session{id: uuid.NewString(), data: make(Data), store: store, ttl: cfg.ttl, isNew: true}
}

// readSignedCookies parses the request's raw Cookie header directly rather
// than relying on cookie.Middleware having already run: session middleware
// must work standalone, without requiring cookie.Middleware as a
// prerequisite in the stack.
func readSignedCookies(req *router.Request, cfg config) map[string]string {
	header := req.Get("Cookie")
	if cfg.secret == "" {
		return cookie.Parse(header)
	}
	_, signed := cookie.ParseSigned(header, cfg.secret)
	return signed
}

func cloneData(d Data) Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func persist(res *router.Response, store Store, cfg config, sess *Session) {
	if sess.destroy {
		_ = store.Destroy(sess.id)
		res.ClearCookie(cfg.name, cfg.path)
		return
	}

	shouldPersist := sess.dirty || cfg.resave || (sess.isNew && cfg.saveUninitialized)
	if shouldPersist {
		_ = store.Set(sess.id, Record{Data: sess.data, AccessedAt: time.Now()}, cfg.ttl)
	} else if cfg.rolling && !sess.isNew {
		_ = store.Touch(sess.id, cfg.ttl)
	}

	// A brand-new session that was never persisted gets no cookie: the
	// client has nothing to send back, and setting one would spend a
	// Set-Cookie header on an anonymous, stateless request.
	if sess.isNew && !shouldPersist {
		return
	}
	if !sess.isNew && !shouldPersist && !cfg.rolling {
		return
	}

	value := sess.id
	if cfg.secret != "" {
		value = cookie.Sign(sess.id, cfg.secret)
	}
	res.SetCookie(&http.Cookie{
		Name:     cfg.name,
		Value:    value,
		Path:     cfg.path,
		HttpOnly: true,
		MaxAge:   int(cfg.ttl.Seconds()),
	})
}
