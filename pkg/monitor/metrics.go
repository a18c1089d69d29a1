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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chain outcomes used as metric label values.
const (
	outcomeSuccess       = "success"
	outcomePluginError   = "plugin_error"
	outcomePanic         = "panic"
	outcomeTimeout       = "timeout"
	outcomeCanceled      = "canceled"
	outcomeSnapshotError = "snapshot_error"
)

var (
	chainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_chain_runs_total",
			Help: "Total number of plugin chain runs by outcome",
		},
		[]string{"monitor", "outcome"},
	)

	chainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monitor_chain_duration_seconds",
			Help:    "Plugin chain latency in seconds, including the snapshot",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"monitor", "outcome"},
	)

	chainsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "monitor_chains_in_flight",
			Help: "Current number of plugin chains being executed",
		},
		[]string{"monitor"},
	)

	pluginDuplicateSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_plugin_duplicate_signals_total",
			Help: "Total number of ignored repeated completion signals",
		},
		[]string{"monitor"},
	)
)
