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
	"github.com/NVIDIA/request-monitor/pkg/snapshot"
)

// Well-known top-level keys of a Metrics container.
const (
	KeySystem  = "system"
	KeyProcess = "process"
)

// Metrics is the per-request container handed to every plugin in turn.
// Plugins mutate it in place; later plugins overwrite keys set by earlier ones.
type Metrics map[string]any

// Done is the completion signal handed to a plugin. A nil error continues the
// chain; a non-nil error stops it. Only the first call has any effect.
type Done func(err error)

// Plugin enriches a Metrics container and must eventually call done exactly
// once, either synchronously or from another goroutine. Each plugin runs on
// its own goroutine; it must not touch the container after calling done.
type Plugin func(m Metrics, done Done)

// Extension is implemented by plugin values that carry their own state.
type Extension interface {
	Apply(m Metrics, done Done)
}

func newMetrics(s *snapshot.Snapshot) Metrics {
	return Metrics{
		KeySystem:  s.System.Map(),
		KeyProcess: s.Process.Map(),
	}
}

// System returns the system section, or nil if a plugin replaced it with a
// value of another type.
func (m Metrics) System() map[string]any {
	s, _ := m[KeySystem].(map[string]any)
	return s
}

// Process returns the process section, or nil if a plugin replaced it with a
// value of another type.
func (m Metrics) Process() map[string]any {
	p, _ := m[KeyProcess].(map[string]any)
	return p
}

// Section returns the map stored under key, creating it when absent.
// An existing non-map value is replaced.
func (m Metrics) Section(key string) map[string]any {
	if s, ok := m[key].(map[string]any); ok {
		return s
	}
	s := make(map[string]any)
	m[key] = s
	return s
}
