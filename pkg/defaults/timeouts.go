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

package defaults

import "time"

// Snapshot timeouts for host and process telemetry collection.
const (
	// SnapshotTimeout bounds a single snapshot when the caller's context has no
	// shorter deadline.
	SnapshotTimeout = 2 * time.Second

	// CPUSampleTimeout bounds per-CPU counter reads.
	CPUSampleTimeout = 1 * time.Second
)

// Lag monitor settings.
const (
	// LagInterval is how often the lag monitor schedules a tick.
	LagInterval = 500 * time.Millisecond

	// LagSmoothingFactor dampens individual lag samples; higher is smoother.
	LagSmoothingFactor = 3
)

// Chain settings for the plugin executor.
const (
	// ChainTimeout is the per-request deadline applied by the server when no
	// explicit value is configured. Zero disables the deadline.
	ChainTimeout = 5 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLISnapshotTimeout is the default timeout for the snapshot command.
	CLISnapshotTimeout = 30 * time.Second
)
