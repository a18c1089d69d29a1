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

package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newFakeLagMonitor(t *testing.T, smoothing int) (*LagMonitor, *testingclock.FakeClock) {
	t.Helper()
	fc := testingclock.NewFakeClock(time.Unix(1700000000, 0))
	m := NewLagMonitor(
		WithClock(fc),
		WithInterval(100*time.Millisecond),
		WithSmoothing(smoothing),
	)
	m.Start()
	t.Cleanup(m.Stop)
	require.True(t, fc.HasWaiters(), "expected ticker to be registered on Start")
	return m, fc
}

func TestLagMonitor_InitialLagIsZero(t *testing.T) {
	m, _ := newFakeLagMonitor(t, 1)
	assert.Equal(t, time.Duration(0), m.Lag())
}

func TestLagMonitor_LateTickReportsLag(t *testing.T) {
	m, fc := newFakeLagMonitor(t, 1)

	fc.Step(130 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return m.Lag() == 30*time.Millisecond
	}, time.Second, time.Millisecond)
}

func TestLagMonitor_Smoothing(t *testing.T) {
	m, fc := newFakeLagMonitor(t, 3)

	fc.Step(130 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return m.Lag() == 10*time.Millisecond
	}, time.Second, time.Millisecond)
}

func TestLagMonitor_OnTimeTickReportsNoLag(t *testing.T) {
	m, fc := newFakeLagMonitor(t, 1)

	fc.Step(100 * time.Millisecond)

	assert.Never(t, func() bool {
		return m.Lag() != 0
	}, 50*time.Millisecond, time.Millisecond)
}

func TestLagMonitor_StartStopIdempotent(t *testing.T) {
	m := NewLagMonitor(WithInterval(10 * time.Millisecond))

	// Stop before Start must not block.
	m.Stop()

	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}

func TestLagMonitor_IgnoresInvalidOptions(t *testing.T) {
	m := NewLagMonitor(WithInterval(0), WithSmoothing(0))
	assert.Greater(t, m.interval, time.Duration(0))
	assert.GreaterOrEqual(t, m.factor, 1)
}
