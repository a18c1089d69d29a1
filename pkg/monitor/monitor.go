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

package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
	"github.com/NVIDIA/request-monitor/pkg/snapshot"
)

const defaultName = "monitor"

// Option configures a Monitor at construction time.
type Option func(*Monitor)

// WithPlugins appends plugins to the chain in the given order.
func WithPlugins(plugins ...Plugin) Option {
	return func(m *Monitor) {
		m.plugins = append(m.plugins, plugins...)
	}
}

// WithTimeout bounds each chain run, snapshot included. When the deadline
// passes the run fails with a TIMEOUT error without waiting for the stalled
// plugin. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

// WithName sets the name used in logs and metric labels.
func WithName(name string) Option {
	return func(m *Monitor) {
		if name != "" {
			m.name = name
		}
	}
}

// WithErrorHandler sets the handler Middleware uses when a chain fails.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Monitor) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// Monitor runs an ordered plugin chain over a fresh Metrics container for
// every request. It holds no per-request state and is safe for concurrent use.
type Monitor struct {
	name         string
	provider     snapshot.Provider
	plugins      []Plugin
	timeout      time.Duration
	errorHandler ErrorHandler
}

// New validates the configured plugins and returns a Monitor. A nil provider
// selects a live host provider. Any nil plugin fails construction with an
// INVALID_PLUGIN error naming its position.
func New(provider snapshot.Provider, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		name:         defaultName,
		provider:     provider,
		errorHandler: DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(m)
	}

	for i, p := range m.plugins {
		if p == nil {
			return nil, invalidPluginError(i, nil)
		}
	}

	// Detach from the caller's slice so the chain cannot change after construction.
	m.plugins = append([]Plugin(nil), m.plugins...)

	if m.provider == nil {
		m.provider = snapshot.NewHostProvider()
	}

	return m, nil
}

// NewFromAny builds a Monitor from dynamically loaded plugin values. Each
// value must be a Plugin, a func(Metrics, Done), a
// func(map[string]any, func(error)) or an Extension.
func NewFromAny(provider snapshot.Provider, plugins []any, opts ...Option) (*Monitor, error) {
	converted := make([]Plugin, 0, len(plugins))
	for i, v := range plugins {
		p, ok := asPlugin(v)
		if !ok {
			return nil, invalidPluginError(i, v)
		}
		converted = append(converted, p)
	}
	return New(provider, append(opts, WithPlugins(converted...))...)
}

func asPlugin(v any) (Plugin, bool) {
	switch p := v.(type) {
	case Plugin:
		return p, p != nil
	case func(Metrics, Done):
		return p, p != nil
	case func(Metrics, func(error)):
		if p == nil {
			return nil, false
		}
		return func(m Metrics, done Done) { p(m, done) }, true
	case func(map[string]any, func(error)):
		if p == nil {
			return nil, false
		}
		return func(m Metrics, done Done) { p(m, done) }, true
	case Extension:
		if p == nil {
			return nil, false
		}
		return p.Apply, true
	default:
		return nil, false
	}
}

func invalidPluginError(index int, v any) error {
	return cerrors.NewWithContext(cerrors.ErrCodeInvalidPlugin,
		fmt.Sprintf("plugin at position %d is not invocable (%T)", index, v),
		map[string]any{
			"index": index,
			"type":  fmt.Sprintf("%T", v),
		})
}

// IsInvalidPlugin reports whether err is a construction failure caused by a
// plugin that cannot be invoked.
func IsInvalidPlugin(err error) bool {
	return cerrors.IsCode(err, cerrors.ErrCodeInvalidPlugin)
}

// IsTimeout reports whether err is a chain deadline failure.
func IsTimeout(err error) bool {
	return cerrors.IsCode(err, cerrors.ErrCodeTimeout)
}

// Name returns the monitor name.
func (m *Monitor) Name() string {
	return m.name
}

// Len returns the number of plugins in the chain.
func (m *Monitor) Len() int {
	return len(m.plugins)
}

// Run executes the chain for one request and calls next exactly once. On
// success next receives ctx with the finished container attached (see
// FromContext) and a nil error. On failure next receives the original ctx and
// the first error; plugin errors are passed through unchanged.
func (m *Monitor) Run(ctx context.Context, next func(ctx context.Context, err error)) {
	metrics, err := m.Collect(ctx)
	if err != nil {
		next(ctx, err)
		return
	}
	next(WithMetrics(ctx, metrics), nil)
}

// Collect executes the chain and returns the finished container without
// attaching it anywhere.
func (m *Monitor) Collect(ctx context.Context) (Metrics, error) {
	start := time.Now()
	inFlight := chainsInFlight.WithLabelValues(m.name)
	inFlight.Inc()
	defer inFlight.Dec()

	metrics, outcome, err := m.execute(ctx)

	chainRunsTotal.WithLabelValues(m.name, outcome).Inc()
	chainDuration.WithLabelValues(m.name, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Debug("plugin chain failed",
			"monitor", m.name,
			"outcome", outcome,
			"error", err,
			"duration", time.Since(start).String(),
		)
		return nil, err
	}

	slog.Debug("plugin chain completed",
		"monitor", m.name,
		"plugins", len(m.plugins),
		"duration", time.Since(start).String(),
	)
	return metrics, nil
}

func (m *Monitor) execute(parent context.Context) (Metrics, string, error) {
	ctx := parent
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, m.timeout)
		defer cancel()
	}

	snap, err := m.provider.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			outcome, cerr := m.contextError(ctx, parent, -1)
			return nil, outcome, cerr
		}
		if _, ok := cerrors.CodeOf(err); !ok {
			err = cerrors.Wrap(cerrors.ErrCodeUnavailable, "failed to collect snapshot", err)
		}
		return nil, outcomeSnapshotError, err
	}
	if snap == nil {
		return nil, outcomeSnapshotError, cerrors.New(cerrors.ErrCodeUnavailable, "snapshot provider returned no data")
	}

	metrics := newMetrics(snap)

	for i, p := range m.plugins {
		if ctx.Err() != nil {
			outcome, err := m.contextError(ctx, parent, i)
			return nil, outcome, err
		}
		if outcome, err := m.step(ctx, parent, i, p, metrics); err != nil {
			return nil, outcome, err
		}
	}

	return metrics, outcomeSuccess, nil
}

// signalResult is what a plugin step delivers back to the chain.
type signalResult struct {
	err      error
	panicked bool
}

// completion is the one-shot signal behind a plugin's Done.
type completion struct {
	ch   chan signalResult
	sent atomic.Bool
}

func newCompletion() *completion {
	return &completion{ch: make(chan signalResult, 1)}
}

// signal delivers r if nothing was delivered yet and reports whether it did.
func (c *completion) signal(r signalResult) bool {
	if !c.sent.CompareAndSwap(false, true) {
		return false
	}
	c.ch <- r
	return true
}

func (m *Monitor) step(ctx, parent context.Context, index int, p Plugin, metrics Metrics) (string, error) {
	c := newCompletion()

	done := func(err error) {
		if !c.signal(signalResult{err: err}) {
			pluginDuplicateSignals.WithLabelValues(m.name).Inc()
			slog.Warn("plugin signaled completion more than once",
				"monitor", m.name,
				"plugin", index,
			)
		}
	}

	// The plugin runs on its own goroutine so a body that blocks past the
	// deadline cannot hold the chain. On timeout the container is dropped and
	// whatever the plugin does with it afterwards is not observed.
	go m.invoke(index, p, metrics, done, c)

	select {
	case r := <-c.ch:
		if r.err == nil && ctx.Err() != nil {
			// Signaled, but only after the deadline passed.
			return m.contextError(ctx, parent, index)
		}
		return r.outcome(), r.err
	case <-ctx.Done():
		return m.contextError(ctx, parent, index)
	}
}

func (r signalResult) outcome() string {
	switch {
	case r.err == nil:
		return outcomeSuccess
	case r.panicked:
		return outcomePanic
	default:
		return outcomePluginError
	}
}

func (m *Monitor) invoke(index int, p Plugin, metrics Metrics, done Done, c *completion) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		var cause error
		switch v := r.(type) {
		case error:
			cause = v
		default:
			cause = fmt.Errorf("%v", v)
		}

		err := cerrors.WrapWithContext(cerrors.ErrCodePluginPanic, "plugin panicked", cause,
			map[string]any{"plugin": index})

		if !c.signal(signalResult{err: err, panicked: true}) {
			slog.Error("plugin panicked after signaling completion",
				"monitor", m.name,
				"plugin", index,
				"error", cause.Error(),
			)
			return
		}

		slog.Error("plugin panicked",
			"monitor", m.name,
			"plugin", index,
			"error", cause.Error(),
		)
	}()

	p(metrics, done)
}

// contextError maps a finished context to the chain error. Cancellation of
// the caller's context is returned as is; expiry of the chain deadline
// becomes a TIMEOUT error.
func (m *Monitor) contextError(ctx, parent context.Context, index int) (string, error) {
	if err := parent.Err(); err != nil {
		return outcomeCanceled, err
	}

	details := map[string]any{
		"timeout": m.timeout.String(),
	}
	msg := "snapshot collection timed out"
	if index >= 0 {
		details["plugin"] = index
		msg = fmt.Sprintf("plugin at position %d did not signal before the chain deadline", index)
	}

	return outcomeTimeout, cerrors.WrapWithContext(cerrors.ErrCodeTimeout, msg, ctx.Err(), details)
}
