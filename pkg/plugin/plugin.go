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

package plugin

import (
	"fmt"
	"os"
	"runtime"

	"github.com/NVIDIA/request-monitor/pkg/monitor"
)

// Keys written by the bundled plugins.
const (
	KeyRuntime  = "runtime"
	KeyBuild    = "build"
	KeyHostname = "hostname"
)

// Runtime adds Go runtime statistics under "runtime".
func Runtime() monitor.Plugin {
	return func(m monitor.Metrics, done monitor.Done) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		rt := m.Section(KeyRuntime)
		rt["version"] = runtime.Version()
		rt["goroutines"] = runtime.NumGoroutine()
		rt["gomaxprocs"] = runtime.GOMAXPROCS(0)
		rt["numGC"] = ms.NumGC
		rt["lastGCPauseNs"] = ms.PauseNs[(ms.NumGC+255)%256]
		done(nil)
	}
}

// Build adds application identity under "build".
func Build(name, version, commit string) monitor.Plugin {
	return func(m monitor.Metrics, done monitor.Done) {
		b := m.Section(KeyBuild)
		b["name"] = name
		b["version"] = version
		b["commit"] = commit
		done(nil)
	}
}

// Hostname adds the host name to the system section.
func Hostname() monitor.Plugin {
	return func(m monitor.Metrics, done monitor.Done) {
		name, err := os.Hostname()
		if err != nil {
			done(fmt.Errorf("failed to read hostname: %w", err))
			return
		}
		m.Section(monitor.KeySystem)[KeyHostname] = name
		done(nil)
	}
}

// Static sets key to value on every request. Nested map[string]any and
// []any values are copied per request; any other reference type is shared
// between requests and must not be mutated by later plugins.
func Static(key string, value any) monitor.Plugin {
	return func(m monitor.Metrics, done monitor.Done) {
		m[key] = clone(value)
		done(nil)
	}
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = clone(e)
		}
		return out
	case monitor.Metrics:
		return clone(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}
