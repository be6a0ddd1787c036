// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
)

const secondsPerYear = 365 * 24 * 3600

var (
	// rewards are tracked with 18 decimals, like sdk.Dec
	decPrecision = uint256.NewInt(1_000_000_000_000_000_000)
	bpsBase      = uint256.NewInt(10_000)
)

// Token is a fungible token issued through the token facility.
type Token struct {
	Denom     string
	Symbol    string
	Issuer    string
	Admin     string
	Precision uint32
	Features  []string
	Supply    *uint256.Int
}

func (t *Token) hasFeature(f string) bool {
	for _, x := range t.Features {
		if x == f {
			return true
		}
	}
	return false
}

type delegation struct {
	delegator string
	validator string
	shares    *uint256.Int
	rewards   *uint256.Int // 18 decimals
	accrued   time.Time
}

// UnbondingEntry is principal waiting for the unbonding period to end.
type UnbondingEntry struct {
	Delegator  string
	Validator  string
	Amount     facility.Coin
	Completion time.Time
}

// ledger is the full simulated chain state. It is copied on prepare.
type ledger struct {
	balances    map[string]map[string]*uint256.Int
	tokens      map[string]*Token
	delegations map[string]*delegation
	unbonding   []*UnbondingEntry
}

func newLedger() *ledger {
	return &ledger{
		balances:    make(map[string]map[string]*uint256.Int),
		tokens:      make(map[string]*Token),
		delegations: make(map[string]*delegation),
	}
}

func (l *ledger) clone() *ledger {
	c := newLedger()
	for acc, denoms := range l.balances {
		m := make(map[string]*uint256.Int, len(denoms))
		for d, v := range denoms {
			m[d] = new(uint256.Int).Set(v)
		}
		c.balances[acc] = m
	}
	for d, t := range l.tokens {
		cpy := *t
		cpy.Supply = new(uint256.Int).Set(t.Supply)
		cpy.Features = append([]string(nil), t.Features...)
		c.tokens[d] = &cpy
	}
	for k, d := range l.delegations {
		c.delegations[k] = &delegation{
			delegator: d.delegator,
			validator: d.validator,
			shares:    new(uint256.Int).Set(d.shares),
			rewards:   new(uint256.Int).Set(d.rewards),
			accrued:   d.accrued,
		}
	}
	for _, e := range l.unbonding {
		cpy := *e
		cpy.Amount = facility.NewCoin(e.Amount.Denom, e.Amount.Amount)
		c.unbonding = append(c.unbonding, &cpy)
	}
	return c
}

func delegationKey(delegator, validator string) string {
	return delegator + "|" + validator
}

func (l *ledger) balance(account, denom string) *uint256.Int {
	if v, ok := l.balances[account][denom]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

func (l *ledger) credit(account string, coin facility.Coin) error {
	if coin.Amount == nil || coin.Amount.IsZero() {
		return nil
	}
	m, ok := l.balances[account]
	if !ok {
		m = make(map[string]*uint256.Int)
		l.balances[account] = m
	}
	cur, ok := m[coin.Denom]
	if !ok {
		cur = new(uint256.Int)
		m[coin.Denom] = cur
	}
	if _, overflow := cur.AddOverflow(cur, coin.Amount); overflow {
		return errors.Errorf("balance overflow: %s %s", account, coin.Denom)
	}
	return nil
}

func (l *ledger) debit(account string, coin facility.Coin) error {
	if coin.Amount == nil || coin.Amount.IsZero() {
		return nil
	}
	cur := l.balances[account][coin.Denom]
	if cur == nil || cur.Lt(coin.Amount) {
		return errors.Errorf("insufficient funds: %s has %s, needs %s", account, l.balance(account, coin.Denom).Dec()+coin.Denom, coin)
	}
	cur.Sub(cur, coin.Amount)
	if cur.IsZero() {
		delete(l.balances[account], coin.Denom)
	}
	return nil
}

// pendingRewards returns the 18-decimal rewards of d accrued up to now, without settling.
func pendingRewards(d *delegation, now time.Time, rateBps uint64) *uint256.Int {
	total := new(uint256.Int).Set(d.rewards)
	if rateBps == 0 || !now.After(d.accrued) {
		return total
	}
	elapsed := uint64(now.Sub(d.accrued) / time.Second)
	acc := new(uint256.Int).Mul(d.shares, uint256.NewInt(rateBps))
	acc.Mul(acc, uint256.NewInt(elapsed))
	acc.Mul(acc, decPrecision)
	acc.Div(acc, bpsBase)
	acc.Div(acc, uint256.NewInt(secondsPerYear))
	return total.Add(total, acc)
}

// withdraw settles accrued rewards of d and pays the integral part to the delegator.
func (l *ledger) withdraw(d *delegation, now time.Time, rateBps uint64, bondDenom string) error {
	d.rewards = pendingRewards(d, now, rateBps)
	if now.After(d.accrued) {
		d.accrued = now
	}
	whole := new(uint256.Int).Div(d.rewards, decPrecision)
	if whole.IsZero() {
		return nil
	}
	d.rewards.Mod(d.rewards, decPrecision)
	return l.credit(d.delegator, facility.NewCoin(bondDenom, whole))
}

// mature releases unbonding entries completed at now.
func (l *ledger) mature(now time.Time) error {
	kept := l.unbonding[:0]
	for _, e := range l.unbonding {
		if !now.Before(e.Completion) {
			if err := l.credit(e.Delegator, e.Amount); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, e)
	}
	l.unbonding = kept
	return nil
}

func (l *ledger) holders(denom string) []facility.Holder {
	var holders []facility.Holder
	for acc, m := range l.balances {
		if v, ok := m[denom]; ok && !v.IsZero() {
			holders = append(holders, facility.Holder{Address: acc, Balance: new(uint256.Int).Set(v)})
		}
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Address < holders[j].Address })
	return holders
}
