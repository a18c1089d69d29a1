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

// Package server hosts the request monitor over HTTP.
//
// Every request to a monitored route runs the monitor's plugin chain before
// the handler. The handler reads the finished container with
// monitor.FromContext; when the chain fails the handler is skipped and a
// structured error is written instead.
//
// # Usage
//
//	m, err := monitor.New(nil,
//	    monitor.WithPlugins(plugin.Runtime()),
//	    monitor.WithTimeout(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//
//	s, err := server.New(
//	    server.WithName("monitord"),
//	    server.WithVersion(version),
//	    server.WithMonitor(m),
//	)
//	if err != nil {
//	    return err
//	}
//	return s.Run(ctx)
//
// # Endpoints
//
// GET / - metrics container collected for the request (monitored)
//
// GET /health - liveness check, always 200
//
// GET /ready - readiness check, 503 until the listener is bound and during shutdown
//
// GET /metrics - Prometheus metrics
//
// Handlers added with WithHandler are monitored and share the middleware
// stack of the root route.
//
// # Errors
//
// Chain failures map to status codes as follows:
//
//	TIMEOUT              504, retryable
//	SERVICE_UNAVAILABLE  503, retryable
//	PLUGIN_PANIC         500
//	plugin errors        500 INTERNAL, message is the plugin error text
//
// Nothing is written when the client cancels the request mid-chain.
//
// # Observability
//
// All requests accept an optional X-Request-Id header (UUID format). If it is
// missing or malformed the server generates one. The ID is echoed in the
// response header and in every error body.
//
// Rate limit state is reported in X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset. Rejected requests get 429 with Retry-After.
//
// When started under systemd with Type=notify the server reports READY=1 once
// the listener is bound and STOPPING=1 on shutdown.
package server
