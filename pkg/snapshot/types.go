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

package snapshot

import (
	"context"
	"time"
)

// Provider returns a fresh host and process telemetry snapshot.
// Implementations must be safe for concurrent use.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (*Snapshot, error)

// Snapshot calls f(ctx).
func (f ProviderFunc) Snapshot(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// Snapshot is a point-in-time view of the host and the current process.
type Snapshot struct {
	System  System  `json:"system" yaml:"system"`
	Process Process `json:"process" yaml:"process"`
}

// System holds host level telemetry.
type System struct {
	// Uptime is the number of seconds the host has been running.
	Uptime float64 `json:"uptime" yaml:"uptime"`
	// LoadAvg holds the 1, 5 and 15 minute load averages.
	// It is nil on platforms that do not report load.
	LoadAvg []float64    `json:"loadavg" yaml:"loadavg"`
	Memory  SystemMemory `json:"memory" yaml:"memory"`
	CPUs    []CPU        `json:"cpus" yaml:"cpus"`
}

// SystemMemory holds host memory in bytes.
type SystemMemory struct {
	Total       uint64  `json:"total" yaml:"total"`
	Free        uint64  `json:"free" yaml:"free"`
	Utilization float64 `json:"utilization" yaml:"utilization"`
}

// CPU describes a single logical CPU.
type CPU struct {
	Model string   `json:"model" yaml:"model"`
	Speed float64  `json:"speed" yaml:"speed"` // MHz
	Times CPUTimes `json:"times" yaml:"times"`
}

// CPUTimes are cumulative milliseconds spent in each mode.
type CPUTimes struct {
	User float64 `json:"user" yaml:"user"`
	Nice float64 `json:"nice" yaml:"nice"`
	Sys  float64 `json:"sys" yaml:"sys"`
	Idle float64 `json:"idle" yaml:"idle"`
	IRQ  float64 `json:"irq" yaml:"irq"`
}

// Process holds telemetry about the running process.
type Process struct {
	PID int `json:"pid" yaml:"pid"`
	// Uptime is the number of seconds the process has been running.
	Uptime float64       `json:"uptime" yaml:"uptime"`
	Memory ProcessMemory `json:"memory" yaml:"memory"`
	// Lag is the scheduler lag in milliseconds.
	Lag float64 `json:"lag" yaml:"lag"`
}

// ProcessMemory holds process memory usage in bytes.
type ProcessMemory struct {
	RSS       uint64 `json:"rss" yaml:"rss"`
	HeapUsed  uint64 `json:"heapUsed" yaml:"heapUsed"`
	HeapTotal uint64 `json:"heapTotal" yaml:"heapTotal"`
}

// Utilization returns the used fraction of total memory, or 0 when total is 0.
func Utilization(total, free uint64) float64 {
	if total == 0 {
		return 0
	}
	if free > total {
		return 0
	}
	return float64(total-free) / float64(total)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Map renders the system section as a mutable map. Every call returns
// freshly allocated maps and slices.
func (s System) Map() map[string]any {
	var load []float64
	if s.LoadAvg != nil {
		load = append([]float64(nil), s.LoadAvg...)
	}

	cpus := make([]map[string]any, 0, len(s.CPUs))
	for _, c := range s.CPUs {
		cpus = append(cpus, map[string]any{
			"model": c.Model,
			"speed": c.Speed,
			"times": map[string]any{
				"user": c.Times.User,
				"nice": c.Times.Nice,
				"sys":  c.Times.Sys,
				"idle": c.Times.Idle,
				"irq":  c.Times.IRQ,
			},
		})
	}

	return map[string]any{
		"uptime":  s.Uptime,
		"loadavg": load,
		"memory": map[string]any{
			"total":       s.Memory.Total,
			"free":        s.Memory.Free,
			"utilization": s.Memory.Utilization,
		},
		"cpus": cpus,
	}
}

// Map renders the process section as a mutable map.
func (p Process) Map() map[string]any {
	return map[string]any{
		"pid":    p.PID,
		"uptime": p.Uptime,
		"memory": map[string]any{
			"rss":       p.Memory.RSS,
			"heapUsed":  p.Memory.HeapUsed,
			"heapTotal": p.Memory.HeapTotal,
		},
		"lag": p.Lag,
	}
}

// StaticProvider returns the same snapshot on every call. Useful for tests
// and for hosts where live collection is not wanted.
type StaticProvider struct {
	Value Snapshot
	Err   error
}

// Snapshot returns a copy of the configured value or the configured error.
func (p *StaticProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	s := p.Value
	return &s, nil
}
