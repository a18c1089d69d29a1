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

package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NVIDIA/request-monitor/pkg/logging"
	"github.com/NVIDIA/request-monitor/pkg/monitor"
	"github.com/NVIDIA/request-monitor/pkg/plugin"
	"github.com/NVIDIA/request-monitor/pkg/server"
	"github.com/NVIDIA/request-monitor/pkg/snapshot"
)

const (
	name           = "monitord"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/request-monitor/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server with env-derived configuration and blocks
// until shutdown.
func Serve() error {
	logging.SetDefaultStructuredLogger(name, version)
	return ServeContext(context.Background(), nil)
}

// ServeContext runs the server with cfg until ctx is canceled or a shutdown
// signal arrives. A nil cfg selects server.NewConfig(). The caller owns
// logger setup.
func ServeContext(ctx context.Context, cfg *server.Config) error {
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	lag := snapshot.NewLagMonitor()
	lag.Start()
	defer lag.Stop()

	if cfg == nil {
		cfg = server.NewConfig()
	}
	cfg.Name = name
	cfg.Version = version

	m, err := newMonitor(snapshot.NewHostProvider(snapshot.WithLagMonitor(lag)), cfg)
	if err != nil {
		return err
	}

	s, err := server.New(
		server.WithConfig(cfg),
		server.WithMonitor(m),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// newMonitor builds the chain served on every request: host name, Go
// runtime statistics and build identity, in that order.
func newMonitor(provider snapshot.Provider, cfg *server.Config) (*monitor.Monitor, error) {
	m, err := monitor.New(provider,
		monitor.WithName(cfg.Name),
		monitor.WithTimeout(cfg.ChainTimeout),
		monitor.WithErrorHandler(server.WriteChainError),
		monitor.WithPlugins(
			plugin.Hostname(),
			plugin.Runtime(),
			plugin.Build(cfg.Name, cfg.Version, commit),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return m, nil
}
