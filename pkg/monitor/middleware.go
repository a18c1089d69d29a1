// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
	"github.com/NVIDIA/request-monitor/pkg/serializer"
)

// ErrorHandler writes the response for a request whose chain failed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the body written by DefaultErrorHandler.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
}

// Middleware runs the chain before next. On success the request context
// carries the finished container; on failure next is not called and the
// monitor's error handler writes the response. The response writer is not
// touched on the success path.
func (m *Monitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Run(r.Context(), func(ctx context.Context, err error) {
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
}

// StatusFor maps a chain error to an HTTP status, error code and whether the
// request may be retried.
func StatusFor(err error) (int, cerrors.ErrorCode, bool) {
	code, ok := cerrors.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError, cerrors.ErrCodeInternal, false
	}
	switch code {
	case cerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code, true
	case cerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, code, true
	default:
		return http.StatusInternalServerError, code, false
	}
}

// DefaultErrorHandler writes a JSON error body. Nothing is written when the
// client has already gone away.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Debug("request canceled during plugin chain",
			"path", r.URL.Path,
			"method", r.Method,
		)
		return
	}

	status, code, retryable := StatusFor(err)
	slog.Warn("plugin chain failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
	)

	serializer.RespondJSON(w, status, ErrorResponse{
		Code:      string(code),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}
