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
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/NVIDIA/request-monitor/pkg/defaults"
)

// LagOption configures a LagMonitor.
type LagOption func(*LagMonitor)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.WithTicker) LagOption {
	return func(m *LagMonitor) {
		m.clock = c
	}
}

// WithInterval sets how often a tick is scheduled.
func WithInterval(d time.Duration) LagOption {
	return func(m *LagMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSmoothing sets the dampening factor applied to samples. A factor of 1
// reports the most recent sample unchanged.
func WithSmoothing(factor int) LagOption {
	return func(m *LagMonitor) {
		if factor >= 1 {
			m.factor = factor
		}
	}
}

// LagMonitor measures how late the Go scheduler delivers periodic ticks.
// A busy process delivers them late; the delay is reported as lag.
type LagMonitor struct {
	clock    clock.WithTicker
	interval time.Duration
	factor   int

	mu      sync.RWMutex
	lag     time.Duration
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewLagMonitor creates a stopped monitor. Call Start to begin sampling.
func NewLagMonitor(opts ...LagOption) *LagMonitor {
	m := &LagMonitor{
		clock:    clock.RealClock{},
		interval: defaults.LagInterval,
		factor:   defaults.LagSmoothingFactor,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins sampling in a background goroutine. It is a no-op if the
// monitor is already running.
func (m *LagMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	ticker := m.clock.NewTicker(m.interval)
	last := m.clock.Now()

	go m.loop(ticker, last, m.stop, m.done)
}

// Stop halts sampling and waits for the background goroutine to exit.
func (m *LagMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

// Lag returns the current smoothed lag.
func (m *LagMonitor) Lag() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lag
}

func (m *LagMonitor) loop(t clock.Ticker, last time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			now := m.clock.Now()
			sample := now.Sub(last) - m.interval
			if sample < 0 {
				sample = 0
			}
			last = now
			m.record(sample)
		}
	}
}

func (m *LagMonitor) record(sample time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := time.Duration(m.factor)
	m.lag = (m.lag*(f-1) + sample) / f
}
