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
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
	"github.com/NVIDIA/request-monitor/pkg/monitor"
	"github.com/NVIDIA/request-monitor/pkg/serializer"
)

const (
	pathRoot    = "/"
	pathHealth  = "/health"
	pathReady   = "/ready"
	pathMetrics = "/metrics"
)

// setupRoutes configures all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	s.routes = map[string]struct{}{
		pathRoot:    {},
		pathHealth:  {},
		pathReady:   {},
		pathMetrics: {},
	}

	// System endpoints (no rate limiting, no plugin chain)
	mux.HandleFunc(pathHealth, s.handleHealth)
	mux.HandleFunc(pathReady, s.handleReady)
	mux.Handle(pathMetrics, promhttp.Handler())

	// "/{$}" matches only the root, everything else unknown is a 404
	mux.HandleFunc("/{$}", s.withMiddleware(s.monitored(s.handleMetrics)))

	for path, h := range s.config.Handlers {
		if _, exists := s.routes[path]; exists {
			slog.Warn("ignoring handler for reserved path", "path", path)
			continue
		}
		s.routes[path] = struct{}{}
		mux.HandleFunc(path, s.withMiddleware(s.monitored(h)))
	}

	return mux
}

// handleMetrics returns the metrics container collected for this request.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, cerrors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	metrics, ok := monitor.FromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, cerrors.ErrCodeInternal,
			"Metrics not available", false, nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, metrics)
}
