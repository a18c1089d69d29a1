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
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/request-monitor/pkg/defaults"
	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
)

// processStart is used when the OS does not report a process creation time.
var processStart = time.Now()

// Option configures a HostProvider.
type Option func(*HostProvider)

// WithLagMonitor sets the monitor used to report process lag.
func WithLagMonitor(m *LagMonitor) Option {
	return func(p *HostProvider) {
		p.lag = m
	}
}

// WithTimeout overrides the per-snapshot timeout applied when the caller's
// context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *HostProvider) {
		p.timeout = d
	}
}

// HostProvider collects live telemetry from the operating system.
// The zero value is not usable; construct with NewHostProvider.
type HostProvider struct {
	pid     int32
	lag     *LagMonitor
	timeout time.Duration
}

// NewHostProvider creates a provider for the current process.
func NewHostProvider(opts ...Option) *HostProvider {
	p := &HostProvider{
		pid:     int32(os.Getpid()),
		timeout: defaults.SnapshotTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot collects the system and process sections concurrently.
func (p *HostProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sys, err := p.collectSystem(gctx)
		if err != nil {
			return err
		}
		snap.System = *sys
		return nil
	})

	g.Go(func() error {
		proc, err := p.collectProcess(gctx)
		if err != nil {
			return err
		}
		snap.Process = *proc
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeUnavailable, "failed to collect snapshot", err)
	}

	return &snap, nil
}

func (p *HostProvider) collectSystem(ctx context.Context) (*System, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host uptime: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host memory: %w", err)
	}

	sys := &System{
		Uptime: float64(uptime),
		Memory: SystemMemory{
			Total:       vm.Total,
			Free:        vm.Available,
			Utilization: Utilization(vm.Total, vm.Available),
		},
	}

	// Load average is not reported on every platform.
	if avg, err := load.AvgWithContext(ctx); err == nil {
		sys.LoadAvg = []float64{avg.Load1, avg.Load5, avg.Load15}
	} else {
		slog.Debug("load average unavailable", "error", err)
	}

	cpus, err := p.collectCPUs(ctx)
	if err != nil {
		return nil, err
	}
	sys.CPUs = cpus

	return sys, nil
}

func (p *HostProvider) collectCPUs(ctx context.Context) ([]CPU, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CPUSampleTimeout)
	defer cancel()

	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}

	// Info is best effort; some platforms report one entry per socket only.
	info, err := cpu.InfoWithContext(ctx)
	if err != nil {
		slog.Debug("cpu info unavailable", "error", err)
	}

	cpus := make([]CPU, 0, len(times))
	for i, t := range times {
		c := CPU{
			Times: CPUTimes{
				User: t.User * 1000,
				Nice: t.Nice * 1000,
				Sys:  t.System * 1000,
				Idle: t.Idle * 1000,
				IRQ:  t.Irq * 1000,
			},
		}
		switch {
		case i < len(info):
			c.Model = info[i].ModelName
			c.Speed = info[i].Mhz
		case len(info) > 0:
			c.Model = info[0].ModelName
			c.Speed = info[0].Mhz
		}
		cpus = append(cpus, c)
	}

	return cpus, nil
}

func (p *HostProvider) collectProcess(ctx context.Context) (*Process, error) {
	proc, err := process.NewProcessWithContext(ctx, p.pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", p.pid, err)
	}

	mi, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read process memory: %w", err)
	}

	started := processStart
	if ms, err := proc.CreateTimeWithContext(ctx); err == nil {
		started = time.UnixMilli(ms)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	res := &Process{
		PID:    int(p.pid),
		Uptime: time.Since(started).Seconds(),
		Memory: ProcessMemory{
			RSS:       mi.RSS,
			HeapUsed:  ms.HeapAlloc,
			HeapTotal: ms.HeapSys,
		},
	}

	if p.lag != nil {
		res.Lag = milliseconds(p.lag.Lag())
	}

	return res, nil
}
