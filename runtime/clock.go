// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Clock provides the block time of invocations.
type Clock interface {
	Now() time.Time
}

// SoloClock is the wall clock shifted forward by an adjustable offset. It lets a
// solo node fast-forward through the unbonding period.
type SoloClock struct {
	mu     sync.Mutex
	offset time.Duration
	wall   func() time.Time
}

func NewSoloClock() *SoloClock {
	return &SoloClock{wall: time.Now}
}

func (c *SoloClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wall().Add(c.offset)
}

// Offset returns how far the clock runs ahead of the wall clock.
func (c *SoloClock) Offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Advance moves the clock forward. Time never goes backwards.
func (c *SoloClock) Advance(d time.Duration) error {
	if d < 0 {
		return errors.New("negative duration")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
	return nil
}
