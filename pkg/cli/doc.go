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

// Package cli implements the monitor command line.
//
// # Commands
//
// serve - Serve request metrics over HTTP:
//
//	monitor serve --port 8080 --chain-timeout 2s
//
// Every request to / runs the plugin chain and returns the collected metrics
// as JSON. See pkg/server for the full endpoint list.
//
// snapshot - Collect metrics once:
//
//	monitor snapshot --format yaml --output metrics.yaml
//
// Runs the same chain once and writes the container in JSON (default), YAML
// or table format, to stdout or a file.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (env: LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
package cli
