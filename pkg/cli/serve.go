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

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/request-monitor/pkg/api"
	"github.com/NVIDIA/request-monitor/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve request metrics over HTTP",
		Description: `Starts an HTTP server that collects host and process metrics for every
request to / and returns them as JSON. Health, readiness and Prometheus
endpoints are served at /health, /ready and /metrics.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP port",
				Sources: cli.EnvVars(server.EnvPort),
				Value:   8080,
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address",
			},
			&cli.DurationFlag{
				Name:    "chain-timeout",
				Usage:   "Deadline for each plugin chain run (0 disables it)",
				Sources: cli.EnvVars(server.EnvChainTimeout),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return api.ServeContext(ctx, serveConfig(cmd))
		},
	}
}

// serveConfig applies flags that were set on top of the env-derived config.
func serveConfig(cmd *cli.Command) *server.Config {
	cfg := server.NewConfig()
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("address") {
		cfg.Address = cmd.String("address")
	}
	if cmd.IsSet("chain-timeout") {
		cfg.ChainTimeout = cmd.Duration("chain-timeout")
	}
	return cfg
}
