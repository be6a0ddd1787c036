// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim simulates the bank, staking and fungible-token facilities in memory.
// It backs the solo node and tests.
package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/log"
)

var logger = log.WithContext("pkg", "sim")

var _ facility.Facility = (*Chain)(nil)

// DefaultUnbondingPeriod is the unbonding period of the simulated staking module.
const DefaultUnbondingPeriod = 7 * 24 * time.Hour

// Clock provides the chain time.
type Clock interface {
	Now() time.Time
}

// Options configures the simulated chain.
type Options struct {
	BondDenom       string
	UnbondingPeriod time.Duration
	// RewardRateBps is the annual staking reward rate in basis points.
	RewardRateBps uint64
}

// Chain is the simulated chain. It is safe for concurrent use.
type Chain struct {
	mu      sync.Mutex
	clock   Clock
	opts    Options
	ledger  *ledger
	version uint64
}

// New creates an empty chain.
func New(clock Clock, opts Options) *Chain {
	if opts.UnbondingPeriod == 0 {
		opts.UnbondingPeriod = DefaultUnbondingPeriod
	}
	if opts.BondDenom == "" {
		opts.BondDenom = "ucore"
	}
	return &Chain{
		clock:  clock,
		opts:   opts,
		ledger: newLedger(),
	}
}

// current returns the committed ledger with matured unbondings released.
func (c *Chain) current() (*ledger, time.Time, error) {
	now := c.clock.Now()
	if err := c.ledger.mature(now); err != nil {
		return nil, now, err
	}
	return c.ledger, now, nil
}

func (c *Chain) Balance(_ context.Context, account, denom string) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _, err := c.current()
	if err != nil {
		return nil, err
	}
	return l.balance(account, denom), nil
}

func (c *Chain) TokenBalance(ctx context.Context, account, denom string) (*uint256.Int, error) {
	return c.Balance(ctx, account, denom)
}

func (c *Chain) TokenHolders(_ context.Context, denom string) ([]facility.Holder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _, err := c.current()
	if err != nil {
		return nil, err
	}
	if _, ok := l.tokens[denom]; !ok {
		return nil, errors.Errorf("token %s not found", denom)
	}
	return l.holders(denom), nil
}

func (c *Chain) Delegation(_ context.Context, delegator, validator string) (*facility.Delegation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _, err := c.current()
	if err != nil {
		return nil, err
	}
	d, ok := l.delegations[delegationKey(delegator, validator)]
	if !ok {
		return nil, nil
	}
	return &facility.Delegation{
		Delegator: delegator,
		Validator: validator,
		Amount:    facility.NewCoin(c.opts.BondDenom, d.shares),
	}, nil
}

func (c *Chain) DelegationRewards(_ context.Context, delegator, validator string) ([]facility.DecCoin, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, now, err := c.current()
	if err != nil {
		return nil, err
	}
	d, ok := l.delegations[delegationKey(delegator, validator)]
	if !ok {
		return nil, nil
	}
	pending := pendingRewards(d, now, c.opts.RewardRateBps)
	if pending.IsZero() {
		return nil, nil
	}
	return []facility.DecCoin{{Denom: c.opts.BondDenom, Amount: formatDec(pending)}}, nil
}

// formatDec renders an 18-decimal fixed point value.
func formatDec(v *uint256.Int) string {
	whole := new(uint256.Int).Div(v, decPrecision)
	frac := new(uint256.Int).Mod(v, decPrecision)
	return fmt.Sprintf("%s.%018s", whole.Dec(), frac.Dec())
}

// Prepare applies msgs on a copy of the chain state.
func (c *Chain) Prepare(_ context.Context, msgs []facility.Envelope) (facility.Changeset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, now, err := c.current()
	if err != nil {
		return nil, err
	}
	next := l.clone()
	for i, env := range msgs {
		if err := c.apply(next, now, env); err != nil {
			return nil, errors.WithMessagef(err, "msg %d (%s)", i, env.Msg.Kind())
		}
	}
	return &changeset{chain: c, next: next, version: c.version, count: len(msgs)}, nil
}

func (c *Chain) apply(l *ledger, now time.Time, env facility.Envelope) error {
	switch msg := env.Msg.(type) {
	case facility.BankSend:
		if err := msg.Amount.Validate(); err != nil {
			return err
		}
		for _, coin := range msg.Amount {
			if err := l.debit(env.From, coin); err != nil {
				return err
			}
			if err := l.credit(msg.To, coin); err != nil {
				return err
			}
		}
		return nil

	case facility.Delegate:
		if msg.Amount.Denom != c.opts.BondDenom {
			return errors.Errorf("invalid bond denom %s", msg.Amount.Denom)
		}
		if msg.Amount.Amount == nil || msg.Amount.Amount.IsZero() {
			return errors.New("zero delegation")
		}
		if err := l.debit(env.From, msg.Amount); err != nil {
			return err
		}
		key := delegationKey(env.From, msg.Validator)
		d, ok := l.delegations[key]
		if !ok {
			d = &delegation{
				delegator: env.From,
				validator: msg.Validator,
				shares:    new(uint256.Int),
				rewards:   new(uint256.Int),
				accrued:   now,
			}
			l.delegations[key] = d
		} else if err := l.withdraw(d, now, c.opts.RewardRateBps, c.opts.BondDenom); err != nil {
			return err
		}
		d.shares.Add(d.shares, msg.Amount.Amount)
		return nil

	case facility.Undelegate:
		key := delegationKey(env.From, msg.Validator)
		d, ok := l.delegations[key]
		if !ok {
			return errors.Errorf("no delegation of %s to %s", env.From, msg.Validator)
		}
		if msg.Amount.Amount == nil || msg.Amount.Amount.IsZero() || d.shares.Lt(msg.Amount.Amount) {
			return errors.Errorf("invalid undelegation amount %s, delegated %s", msg.Amount, d.shares.Dec())
		}
		if err := l.withdraw(d, now, c.opts.RewardRateBps, c.opts.BondDenom); err != nil {
			return err
		}
		d.shares.Sub(d.shares, msg.Amount.Amount)
		if d.shares.IsZero() {
			delete(l.delegations, key)
		}
		l.unbonding = append(l.unbonding, &UnbondingEntry{
			Delegator:  env.From,
			Validator:  msg.Validator,
			Amount:     facility.NewCoin(c.opts.BondDenom, msg.Amount.Amount),
			Completion: now.Add(c.opts.UnbondingPeriod),
		})
		return nil

	case facility.IssueToken:
		if msg.Symbol == "" || msg.Subunit == "" || msg.Subunit != strings.ToLower(msg.Subunit) {
			return errors.Errorf("invalid token symbol %q or subunit %q", msg.Symbol, msg.Subunit)
		}
		denom := msg.Subunit + "-" + env.From
		if _, exists := l.tokens[denom]; exists {
			return errors.Errorf("token %s already issued", denom)
		}
		t := &Token{
			Denom:     denom,
			Symbol:    msg.Symbol,
			Issuer:    env.From,
			Admin:     env.From,
			Precision: msg.Precision,
			Features:  append([]string(nil), msg.Features...),
			Supply:    new(uint256.Int),
		}
		if msg.InitialAmount.Amount != nil && !msg.InitialAmount.Amount.IsZero() {
			t.Supply.Set(msg.InitialAmount.Amount)
			if err := l.credit(env.From, facility.NewCoin(denom, msg.InitialAmount.Amount)); err != nil {
				return err
			}
		}
		l.tokens[denom] = t
		return nil

	case facility.MintTokens:
		t, ok := l.tokens[msg.Coin.Denom]
		if !ok {
			return errors.Errorf("token %s not found", msg.Coin.Denom)
		}
		if t.Admin != env.From {
			return errors.Errorf("%s is not the admin of %s", env.From, t.Denom)
		}
		if !t.hasFeature(facility.FeatureMinting) {
			return errors.Errorf("minting disabled for %s", t.Denom)
		}
		if _, overflow := t.Supply.AddOverflow(t.Supply, msg.Coin.Amount); overflow {
			return errors.New("supply overflow")
		}
		return l.credit(msg.Recipient, msg.Coin)

	case facility.BurnTokens:
		t, ok := l.tokens[msg.Coin.Denom]
		if !ok {
			return errors.Errorf("token %s not found", msg.Coin.Denom)
		}
		if t.Admin != env.From && !t.hasFeature(facility.FeatureBurning) {
			return errors.Errorf("burning disabled for %s", t.Denom)
		}
		if err := l.debit(env.From, msg.Coin); err != nil {
			return err
		}
		t.Supply.Sub(t.Supply, msg.Coin.Amount)
		return nil

	case facility.TransferTokenAdmin:
		t, ok := l.tokens[msg.Denom]
		if !ok {
			return errors.Errorf("token %s not found", msg.Denom)
		}
		if t.Admin != env.From {
			return errors.Errorf("%s is not the admin of %s", env.From, t.Denom)
		}
		if msg.NewAdmin == "" {
			return errors.New("empty admin")
		}
		t.Admin = msg.NewAdmin
		return nil
	}
	return errors.Errorf("unsupported message %T", env.Msg)
}

type changeset struct {
	chain   *Chain
	next    *ledger
	version uint64
	count   int
	done    bool
}

func (cs *changeset) Commit() error {
	c := cs.chain
	c.mu.Lock()
	defer c.mu.Unlock()

	if cs.done {
		return errors.New("changeset already finalized")
	}
	cs.done = true
	if c.version != cs.version {
		return errors.New("facility state changed since prepare")
	}
	c.ledger = cs.next
	c.version++
	logger.Trace("changeset committed", "msgs", cs.count, "version", c.version)
	return nil
}

func (cs *changeset) Discard() {
	cs.done = true
	cs.next = nil
}
