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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseJSONDefaultsToCompact(t *testing.T) {
	t.Parallel()

	app := New()
	w := httptest.NewRecorder()
	res := newResponse(w, app)
	require.NoError(t, res.JSON(http.StatusOK, map[string]any{"a": 1}))
	assert.Equal(t, "application/json; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, w.Body.String())
}

func TestResponseJSONHonorsSpacesSetting(t *testing.T) {
	t.Parallel()

	app := New(WithJSONSpaces(2))
	w := httptest.NewRecorder()
	res := newResponse(w, app)
	require.NoError(t, res.JSON(http.StatusOK, map[string]any{"a": 1}))
	assert.Contains(t, w.Body.String(), "\n")
}

func TestResponseYAML(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	require.NoError(t, res.YAML(http.StatusOK, map[string]any{"a": 1}))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	assert.Contains(t, w.Body.String(), "a: 1")
}

func TestResponseWrittenOnceGuard(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.Send(http.StatusOK, []byte("first"))
	res.Send(http.StatusCreated, []byte("second"))

	assert.Equal(t, http.StatusOK, w.Code, "a second Send after the response is written must be a no-op")
	assert.Equal(t, "first", w.Body.String())
}

func TestResponseRedirectSetsLocationAndStatus(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.Redirect(http.StatusMovedPermanently, "/new-location")

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/new-location", w.Header().Get("Location"))
}

func TestResponseSetCookieAndClearCookie(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.SetCookie(&http.Cookie{Name: "a", Value: "b"})
	res.ClearCookie("a", "/")

	cookies := w.Header().Values("Set-Cookie")
	require.Len(t, cookies, 2)
	assert.Contains(t, cookies[1], "Max-Age=0")
}

func TestResponseContentTypeShortNameAndExtension(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.ContentType("json")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	res.ContentType(".png")
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestResponseHeaderValueSanitizesCRLF(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.Set("X-Custom", "value\r\nInjected: true")
	assert.Equal(t, "valueInjected: true", w.Header().Get("X-Custom"))
}

func TestResponseStripsBodyForNoContentAndNotModified(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	res := newResponse(w, nil)
	res.Send(http.StatusNoContent, []byte("should be discarded"))
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	res = newResponse(w, nil)
	res.Send(http.StatusNotModified, []byte("should be discarded"))
	assert.Empty(t, w.Body.String())
}
