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

// Package api wires the request monitor daemon together.
//
// Serve configures structured logging, starts the scheduler lag monitor,
// builds a monitor over the live host provider with the bundled Hostname,
// Runtime and Build plugins, and runs pkg/server until SIGINT or SIGTERM.
//
// Usage:
//
//	if err := api.Serve(); err != nil {
//	    log.Fatalf("server error: %v", err)
//	}
//
// # Endpoints
//
//   - GET /        - metrics collected for the request
//   - GET /health  - liveness check
//   - GET /ready   - readiness check
//   - GET /metrics - Prometheus metrics
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - MONITOR_CHAIN_TIMEOUT: plugin chain deadline, e.g. 2s (0 disables it)
//   - SHUTDOWN_TIMEOUT_SECONDS: graceful shutdown timeout in seconds
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/request-monitor/pkg/api.version=1.0.0'"
package api
