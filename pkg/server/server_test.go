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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/NVIDIA/request-monitor/pkg/errors"
	"github.com/NVIDIA/request-monitor/pkg/monitor"
	"github.com/NVIDIA/request-monitor/pkg/snapshot"
)

func testProvider() *snapshot.StaticProvider {
	return &snapshot.StaticProvider{
		Value: snapshot.Snapshot{
			System: snapshot.System{
				Uptime: 100,
				Memory: snapshot.SystemMemory{Total: 1000, Free: 250, Utilization: 0.75},
			},
			Process: snapshot.Process{PID: 7, Uptime: 3},
		},
	}
}

func newTestServer(t *testing.T, plugins ...monitor.Plugin) *Server {
	t.Helper()
	m, err := monitor.New(testProvider(),
		monitor.WithPlugins(plugins...),
		monitor.WithTimeout(time.Second),
		monitor.WithErrorHandler(WriteChainError),
	)
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.Port = 0
	s, err := New(WithConfig(cfg), WithMonitor(m))
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(WithName("unit"), WithVersion("1.2.3"))
	require.NoError(t, err)

	assert.Equal(t, "unit", s.config.Name)
	assert.Equal(t, "1.2.3", s.config.Version)
	assert.NotNil(t, s.monitor)
	assert.Equal(t, "unit", s.monitor.Name())
	assert.False(t, s.isReady())
}

func TestNew_OptionsAfterConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Name = "from-config"

	s, err := New(WithConfig(cfg), WithName("override"), WithConfig(nil))
	require.NoError(t, err)
	assert.Equal(t, "override", s.config.Name)
}

func TestRoot_ReturnsMetrics(t *testing.T) {
	s := newTestServer(t, func(m monitor.Metrics, done monitor.Done) {
		m["extra"] = 1
		done(nil)
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, DefaultAPIVersion, rec.Header().Get("X-API-Version"))

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["extra"])
	require.Contains(t, body, monitor.KeySystem)
	require.Contains(t, body, monitor.KeyProcess)
	assert.EqualValues(t, 7, body[monitor.KeyProcess].(map[string]any)["pid"])
}

func TestRoot_PluginError(t *testing.T) {
	s := newTestServer(t, func(_ monitor.Metrics, done monitor.Done) {
		done(errors.New("mock error"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "0b4f1f3e-6a0e-4b7c-9a51-2b8d6f0c2a11")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(cerrors.ErrCodeInternal), body["code"])
	assert.Equal(t, "mock error", body["message"])
	assert.Equal(t, "0b4f1f3e-6a0e-4b7c-9a51-2b8d6f0c2a11", body["requestId"])
	assert.Equal(t, false, body["retryable"])
}

func TestRoot_ChainTimeout(t *testing.T) {
	m, err := monitor.New(testProvider(),
		monitor.WithPlugins(func(monitor.Metrics, monitor.Done) {}),
		monitor.WithTimeout(20*time.Millisecond),
		monitor.WithErrorHandler(WriteChainError),
	)
	require.NoError(t, err)
	s, err := New(WithMonitor(m))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(cerrors.ErrCodeTimeout), body["code"])
	assert.Equal(t, true, body["retryable"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, details["plugin"])
}

func TestRoot_SnapshotUnavailable(t *testing.T) {
	m, err := monitor.New(&snapshot.StaticProvider{Err: errors.New("proc not mounted")},
		monitor.WithErrorHandler(WriteChainError),
	)
	require.NoError(t, err)
	s, err := New(WithMonitor(m))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(cerrors.ErrCodeUnavailable), decode(t, rec)["code"])
}

func TestRoot_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithHandler_IsMonitored(t *testing.T) {
	m, err := monitor.New(testProvider(), monitor.WithPlugins(func(m monitor.Metrics, done monitor.Done) {
		m["tag"] = "x"
		done(nil)
	}))
	require.NoError(t, err)

	var seen monitor.Metrics
	s, err := New(
		WithMonitor(m),
		WithHandler("/custom", func(w http.ResponseWriter, r *http.Request) {
			seen, _ = monitor.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
		WithHandler(pathHealth, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/custom", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "x", seen["tag"])

	// reserved paths keep their built-in handler
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, pathHealth, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		ready  bool
		want   int
	}{
		{name: "health", method: http.MethodGet, path: pathHealth, want: http.StatusOK},
		{name: "health wrong method", method: http.MethodPost, path: pathHealth, want: http.StatusMethodNotAllowed},
		{name: "not ready", method: http.MethodGet, path: pathReady, want: http.StatusServiceUnavailable},
		{name: "ready", method: http.MethodGet, path: pathReady, ready: true, want: http.StatusOK},
		{name: "ready wrong method", method: http.MethodDelete, path: pathReady, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.setReady(tt.ready)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// drive one request so the HTTP series exist
	s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, pathMetrics, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "monitor_http_requests_total")
	assert.Contains(t, rec.Body.String(), "monitor_chain_runs_total")
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, s.isReady, 2*time.Second, 10*time.Millisecond)
	require.NotNil(t, s.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/", s.Addr().String()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}

func TestRun_ContextCanceled(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, s.isReady, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestStart_ListenError(t *testing.T) {
	cfg := NewConfig()
	cfg.Port = -1
	s, err := New(WithConfig(cfg), WithMonitor(newTestServer(t).monitor))
	require.NoError(t, err)

	err = s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.isReady())
}
