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

package bodyparser

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/webway/router"
)

func runParser(t *testing.T, handler router.HandlerFunc, method, contentType, body string) (*router.Request, error) {
	t.Helper()

	app := router.New()
	var captured *router.Request
	var captured2 error
	app.Use(func(req *router.Request, res *router.Response, next router.NextFunc) {
		captured = req
		handler(req, res, func(err error) {
			captured2 = err
			next(err)
		})
	})
	app.UseError("/", func(err error, req *router.Request, res *router.Response, next router.NextFunc) {
		res.Status(http.StatusInternalServerError).End()
	})

	raw := httptest.NewRequest(method, "/", strings.NewReader(body))
	if contentType != "" {
		raw.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, raw)
	return captured, captured2
}

func TestJSONParsesObjectBody(t *testing.T) {
	t.Parallel()

	req, err := runParser(t, JSON(), http.MethodPost, "application/json", `{"name":"ada"}`)
	require.NoError(t, err)
	require.NotNil(t, req)

	body, ok := req.Body().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", body["name"])
}

func TestJSONIgnoresNonMatchingContentType(t *testing.T) {
	t.Parallel()

	req, err := runParser(t, JSON(), http.MethodPost, "text/plain", "hello")
	require.NoError(t, err)
	assert.Nil(t, req.Body())
}

func TestJSONStrictRejectsNonObjectTopLevel(t *testing.T) {
	t.Parallel()

	_, err := runParser(t, JSON(WithStrict(true)), http.MethodPost, "application/json", `42`)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestJSONRejectsTrailingData(t *testing.T) {
	t.Parallel()

	_, err := runParser(t, JSON(), http.MethodPost, "application/json", `{"a":1}{"b":2}`)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, TypeParseFailed, parseErr.Type)
}

func TestJSONEnforcesSizeLimit(t *testing.T) {
	t.Parallel()

	big := `{"data":"` + strings.Repeat("x", 100) + `"}`
	_, err := runParser(t, JSON(WithLimit(10)), http.MethodPost, "application/json", big)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, TypeTooLarge, parseErr.Type)
	assert.Equal(t, http.StatusRequestEntityTooLarge, parseErr.StatusCode())
}

func TestJSONEmptyBodyIsNoop(t *testing.T) {
	t.Parallel()

	req, err := runParser(t, JSON(), http.MethodPost, "application/json", "")
	require.NoError(t, err)
	assert.Nil(t, req.Body())
}
