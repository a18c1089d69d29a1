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

// Package snapshot provides host and process telemetry for the request monitor.
//
// A Provider returns a Snapshot with two sections:
//
//   - system: host uptime, load averages, memory and per-CPU times
//   - process: pid, process uptime, memory usage and scheduler lag
//
// HostProvider reads live values through gopsutil and the Go runtime.
// LagMonitor samples scheduler lag in the background and is shared by all
// requests; start it once at process start:
//
//	lag := snapshot.NewLagMonitor()
//	lag.Start()
//	defer lag.Stop()
//
//	p := snapshot.NewHostProvider(snapshot.WithLagMonitor(lag))
//	snap, err := p.Snapshot(ctx)
//
// Providers are safe for concurrent use.
package snapshot
