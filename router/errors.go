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

import "errors"

// Static errors for better error handling and testing.
// These errors should be wrapped with fmt.Errorf and %w when context is needed.
var (
	// Pattern compilation errors
	ErrEmptyParamName  = errors.New("webway: empty parameter name")
	ErrUnbalancedGroup = errors.New("webway: unbalanced parentheses")

	// Dispatch errors
	ErrSkipRoute      = errors.New("webway: skip to next route")
	ErrResponseClosed = errors.New("webway: response already sent")
	ErrNoErrorHandler = errors.New("webway: unhandled error reached the end of the stack")

	// Configuration errors
	ErrInvalidTrustProxyPolicy = errors.New("webway: invalid trust proxy policy")
	ErrInvalidCIDR             = errors.New("webway: invalid CIDR")
	ErrHandlerRequired         = errors.New("webway: at least one handler is required")

	// Request/response errors
	ErrHeadersAlreadySent = errors.New("webway: headers already sent")
	ErrRequestAborted     = errors.New("webway: request aborted")
)
