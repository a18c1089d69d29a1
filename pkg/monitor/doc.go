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

// Package monitor collects host and process telemetry for every request and
// passes it through an ordered chain of plugins before handing control on.
//
// # Chain
//
// A Monitor is built once with an ordered list of plugins:
//
//	m, err := monitor.New(provider,
//	    monitor.WithPlugins(plugin.Runtime(), plugin.Build(name, version, commit)),
//	    monitor.WithTimeout(5*time.Second),
//	)
//
// For each request the monitor takes a snapshot, seeds a fresh Metrics
// container with "system" and "process" sections, and invokes the plugins
// one at a time. A plugin mutates the container and calls done:
//
//	func(m monitor.Metrics, done monitor.Done) {
//	    m["extra"] = 1
//	    done(nil)
//	}
//
// done(nil) moves on to the next plugin; done(err) stops the chain and err
// is reported to the caller unchanged. Only the first call to done counts.
// Plugins may call done from another goroutine; the chain waits for it.
//
// Exactly one of the following happens per run:
//
//   - every plugin succeeded: the container is attached to the context
//     (see FromContext) and next is called with a nil error
//   - a plugin failed, panicked, or the deadline passed: nothing is attached
//     and next is called with the error
//
// # HTTP
//
// Middleware adapts a Monitor to net/http. Downstream handlers read the
// container with FromContext(r.Context()).
//
// A Monitor holds no per-request state and is safe for concurrent use.
package monitor
