// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
)

// ManualClock is a clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Fund credits account with coins out of thin air. Used for genesis balances.
func (c *Chain) Fund(account string, coins ...facility.Coin) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, coin := range coins {
		if err := c.ledger.credit(account, coin); err != nil {
			return err
		}
	}
	c.version++
	return nil
}

// AddRewards adds amount whole units to the pending rewards of a delegation.
func (c *Chain) AddRewards(delegator, validator string, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.ledger.delegations[delegationKey(delegator, validator)]
	if !ok {
		return errors.Errorf("no delegation of %s to %s", delegator, validator)
	}
	add, overflow := new(uint256.Int).MulOverflow(amount, decPrecision)
	if overflow {
		return errors.New("rewards overflow")
	}
	d.rewards.Add(d.rewards, add)
	c.version++
	return nil
}

// Transfer moves coins between two accounts outside of any pool invocation.
func (c *Chain) Transfer(from, to string, coin facility.Coin) error {
	cs, err := c.Prepare(context.Background(), []facility.Envelope{{From: from, Msg: facility.BankSend{To: to, Amount: facility.Coins{coin}}}})
	if err != nil {
		return err
	}
	return cs.Commit()
}

// Token returns a copy of the issued token.
func (c *Chain) Token(denom string) (Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.ledger.tokens[denom]
	if !ok {
		return Token{}, false
	}
	cpy := *t
	cpy.Supply = new(uint256.Int).Set(t.Supply)
	cpy.Features = append([]string(nil), t.Features...)
	return cpy, true
}

// Unbonding returns the pending unbonding entries of delegator.
func (c *Chain) Unbonding(delegator string) []UnbondingEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _, _ = c.current()
	var entries []UnbondingEntry
	for _, e := range c.ledger.unbonding {
		if e.Delegator == delegator {
			entries = append(entries, *e)
		}
	}
	return entries
}

// BondDenom returns the staking denomination.
func (c *Chain) BondDenom() string { return c.opts.BondDenom }
