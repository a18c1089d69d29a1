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

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// contextKeyMetrics is the context key the finished container is attached under
const contextKeyMetrics contextKey = "monitor"

// WithMetrics returns a copy of ctx carrying m.
func WithMetrics(ctx context.Context, m Metrics) context.Context {
	return context.WithValue(ctx, contextKeyMetrics, m)
}

// FromContext returns the metrics attached by a successful chain run.
func FromContext(ctx context.Context) (Metrics, bool) {
	m, ok := ctx.Value(contextKeyMetrics).(Metrics)
	return m, ok && m != nil
}
