// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_PoolReady(t *testing.T) {
	h := New()
	h.ClockOffset(time.Second)

	status, err := h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.True(t, status.ClockSync)

	h.PoolReady("pool1abc")
	status, err = h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, "pool1abc", status.Pool.String())
}

func TestHealth_ClockOffset(t *testing.T) {
	h := New()
	h.PoolReady("pool1abc")

	// never checked
	status, err := h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.False(t, status.ClockSync)
	assert.False(t, status.Healthy)

	h.ClockOffset(-10 * time.Second)
	status, err = h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.Equal(t, "-10s", status.ClockOffset)

	status, err = h.Status(time.Minute)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}

func TestHealth_NewInvocation(t *testing.T) {
	h := New()

	status, err := h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.Nil(t, status.Invocations.Timestamp)

	h.NewInvocation(7)
	status, err = h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), status.Invocations.Seq)
	require.NotNil(t, status.Invocations.Timestamp)
	assert.WithinDuration(t, time.Now(), *status.Invocations.Timestamp, time.Second)
}

func TestHealth_Solo(t *testing.T) {
	h := NewSolo()
	h.PoolReady("pool1abc")

	status, err := h.Status(DefaultMaxClockOffset)
	require.NoError(t, err)
	require.True(t, status.ClockSync)
	require.True(t, status.Healthy)
}
