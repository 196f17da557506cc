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

import "time"

// Session is the handle attached to a request's locals by Middleware. Its
// methods implement the lifecycle operations spec.md §4.9 names:
// regenerate, destroy, touch, save, reload.
type Session struct {
	id      string
	data    Data
	store   Store
	ttl     time.Duration
	isNew   bool
	dirty   bool
	destroy bool
}

// ID returns the session's current identifier.
func (s *Session) ID() string { return s.id }

// IsNew reports whether this session was just created for this request
// (no existing cookie, or the cookie's session was not found in the
// store).
func (s *Session) IsNew() bool { return s.isNew }

// Get returns the value stored under key, or nil if absent.
func (s *Session) Get(key string) any { return s.data[key] }

// Set stores value under key and marks the session dirty so Middleware
// persists it at the end of the request (subject to the
// saveUninitialized/resave policy).
func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.dirty = true
}

// Delete removes key from the session.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.dirty = true
}

// Regenerate assigns the session a new ID, keeping its data, and forces a
// save at the end of the request. Used after privilege changes (e.g.
// login) to defeat session fixation.
func (s *Session) Regenerate(newID string) {
	s.id = newID
	s.isNew = true
	s.dirty = true
}

// Destroy marks the session for deletion from the store; Middleware will
// also clear the session cookie.
func (s *Session) Destroy() {
	s.destroy = true
}

// Touch refreshes the session's expiry without marking it dirty for a
// full save, used for the "rolling" persistence policy.
func (s *Session) Touch() error {
	return s.store.Touch(s.id, s.ttl)
}

// Save forces an immediate persist to the store, independent of the
// resave policy.
func (s *Session) Save() error {
	return s.store.Set(s.id, Record{Data: s.data, AccessedAt: time.Now()}, s.ttl)
}

// Reload re-reads the session's data from the store, discarding any
// unsaved local changes.
func (s *Session) Reload() error {
	rec, ok, err := s.store.Get(s.id)
	if err != nil {
		return err
	}
	if ok {
		s.data = rec.Data
	}
	s.dirty = false
	return nil
}
