// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/coreumfun/draw/draw"
)

// DefaultMaxClockOffset is the largest local clock drift still reported healthy.
const DefaultMaxClockOffset = 5 * time.Second

type Invocations struct {
	Seq       uint64     `json:"seq"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy     bool         `json:"healthy"`
	Pool        draw.Address `json:"pool"`
	Invocations *Invocations `json:"invocations"`
	ClockOffset string       `json:"clockOffset"`
	ClockSync   bool         `json:"clockSync"`
}

// Health tracks the readiness of a pool node. A node is healthy once the pool
// is instantiated and the local clock agrees with the time server.
type Health struct {
	lock           sync.RWMutex
	pool           draw.Address
	lastSeq        uint64
	lastInvocation time.Time
	clockOffset    time.Duration
	clockChecked   bool
	solo           bool
}

func New() *Health {
	return &Health{}
}

// NewSolo returns a Health that ignores the clock, as solo nodes run on their own time.
func NewSolo() *Health {
	return &Health{solo: true}
}

func (h *Health) PoolReady(pool draw.Address) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.pool = pool
}

func (h *Health) NewInvocation(seq uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastSeq = seq
	h.lastInvocation = time.Now()
}

// ClockOffset records the result of a time server check.
func (h *Health) ClockOffset(offset time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clockOffset = offset
	h.clockChecked = true
}

func (h *Health) Status(maxClockOffset time.Duration) (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	invocations := &Invocations{Seq: h.lastSeq}
	if !h.lastInvocation.IsZero() {
		ts := h.lastInvocation
		invocations.Timestamp = &ts
	}

	offset := h.clockOffset
	if offset < 0 {
		offset = -offset
	}
	clockSync := h.solo || (h.clockChecked && offset <= maxClockOffset)

	return &Status{
		Healthy:     h.pool != "" && clockSync,
		Pool:        h.pool,
		Invocations: invocations,
		ClockOffset: h.clockOffset.String(),
		ClockSync:   clockSync,
	}, nil
}
