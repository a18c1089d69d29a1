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
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/request-monitor/pkg/monitor"
)

// apply runs p synchronously and returns the error it signaled.
func apply(t *testing.T, p monitor.Plugin, m monitor.Metrics) error {
	t.Helper()
	var (
		calls int
		got   error
	)
	p(m, func(err error) {
		calls++
		got = err
	})
	require.Equal(t, 1, calls, "plugin must signal exactly once")
	return got
}

func TestRuntime(t *testing.T) {
	m := monitor.Metrics{}
	require.NoError(t, apply(t, Runtime(), m))

	rt := m.Section(KeyRuntime)
	assert.Equal(t, runtime.Version(), rt["version"])
	assert.Greater(t, rt["goroutines"], 0)
	assert.Greater(t, rt["gomaxprocs"], 0)
	assert.Contains(t, rt, "numGC")
}

func TestBuild(t *testing.T) {
	m := monitor.Metrics{}
	require.NoError(t, apply(t, Build("monitor", "v1.0.0", "abc123"), m))

	assert.Equal(t, map[string]any{
		"name":    "monitor",
		"version": "v1.0.0",
		"commit":  "abc123",
	}, m[KeyBuild])
}

func TestHostname(t *testing.T) {
	want, err := os.Hostname()
	if err != nil {
		t.Skipf("hostname unavailable: %v", err)
	}

	m := monitor.Metrics{monitor.KeySystem: map[string]any{"uptime": 1.0}}
	require.NoError(t, apply(t, Hostname(), m))

	assert.Equal(t, want, m.System()[KeyHostname])
	assert.Equal(t, 1.0, m.System()["uptime"])
}

func TestStatic(t *testing.T) {
	m := monitor.Metrics{"extra": 0}
	require.NoError(t, apply(t, Static("extra", 1), m))
	assert.Equal(t, 1, m["extra"])
}

func TestStatic_ContainersAreNotShared(t *testing.T) {
	labels := map[string]any{
		"team": "infra",
		"tags": []any{"a", map[string]any{"k": "v"}},
	}
	p := Static("labels", labels)

	first, second := monitor.Metrics{}, monitor.Metrics{}
	require.NoError(t, apply(t, p, first))
	require.NoError(t, apply(t, p, second))

	got := first["labels"].(map[string]any)
	got["team"] = "changed"
	got["tags"].([]any)[1].(map[string]any)["k"] = "changed"

	other := second["labels"].(map[string]any)
	assert.Equal(t, "infra", other["team"])
	assert.Equal(t, "v", other["tags"].([]any)[1].(map[string]any)["k"])
	assert.Equal(t, "infra", labels["team"])
}
