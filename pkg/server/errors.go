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

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
	"github.com/NVIDIA/request-monitor/pkg/monitor"
	"github.com/NVIDIA/request-monitor/pkg/serializer"
)

// ErrorResponse is the JSON body of every error returned by the server.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// WriteError writes a structured error response carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code cerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteChainError is the monitor error handler installed by the server. Use it
// with monitor.WithErrorHandler when passing a custom monitor to WithMonitor.
func WriteChainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Debug("request canceled during plugin chain",
			"requestID", RequestID(r.Context()),
			"path", r.URL.Path,
		)
		return
	}

	status, code, retryable := monitor.StatusFor(err)

	var details map[string]any
	var se *cerrors.StructuredError
	if errors.As(err, &se) {
		details = se.Context
	}

	slog.Warn("plugin chain failed",
		"requestID", RequestID(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)

	WriteError(w, r, status, code, err.Error(), retryable, details)
}
