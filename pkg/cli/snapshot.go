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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/request-monitor/pkg/defaults"
	"github.com/NVIDIA/request-monitor/pkg/monitor"
	"github.com/NVIDIA/request-monitor/pkg/plugin"
	"github.com/NVIDIA/request-monitor/pkg/serializer"
	"github.com/NVIDIA/request-monitor/pkg/snapshot"
)

// newProvider is replaced in tests.
var newProvider = func() snapshot.Provider {
	return snapshot.NewHostProvider()
}

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Collect metrics once and print them",
		Description: `Runs the same plugin chain the server runs per request, once, and writes
the resulting metrics container.

  monitor snapshot
  monitor snapshot --format yaml --output metrics.yaml
  monitor snapshot --format table`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Deadline for the collection",
				Value: defaults.CLISnapshotTimeout,
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			m, err := monitor.New(newProvider(),
				monitor.WithName(name),
				monitor.WithTimeout(cmd.Duration("timeout")),
				monitor.WithPlugins(
					plugin.Hostname(),
					plugin.Runtime(),
					plugin.Build(name, version, commit),
				),
			)
			if err != nil {
				return fmt.Errorf("failed to create monitor: %w", err)
			}

			metrics, err := m.Collect(ctx)
			if err != nil {
				return fmt.Errorf("failed to collect metrics: %w", err)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				_ = w.Close()
			}()

			if err := w.Serialize(ctx, metrics); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
	}
}
