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

// Package errors provides structured error types used by the monitor chain,
// the snapshot provider and the HTTP server.
//
// Errors returned by plugins are never converted into StructuredError values;
// they reach the caller exactly as the plugin produced them. Only failures
// raised by the monitor itself (invalid plugins, panics, deadlines, snapshot
// collection) carry a code.
//
// Example usage:
//
//	err := errors.NewWithContext(
//	    errors.ErrCodeInvalidPlugin,
//	    "plugin is not invocable",
//	    map[string]any{"index": 2, "type": "int"},
//	)
//
//	if errors.IsCode(err, errors.ErrCodeInvalidPlugin) {
//	    // fail fast
//	}
package errors
