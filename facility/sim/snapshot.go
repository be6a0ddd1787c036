// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
)

// snapshotVersion guards against restoring an incompatible encoding.
const snapshotVersion = 1

type snapshotBalance struct {
	Account string
	Denom   string
	Amount  *uint256.Int
}

type snapshotDelegation struct {
	Delegator string
	Validator string
	Shares    *uint256.Int
	Rewards   *uint256.Int
	Accrued   uint64 // unix nano, 0 for the zero time
}

type snapshotUnbonding struct {
	Delegator  string
	Validator  string
	Denom      string
	Amount     *uint256.Int
	Completion uint64
}

type snapshot struct {
	Version     uint
	Balances    []snapshotBalance
	Tokens      []Token
	Delegations []snapshotDelegation
	Unbonding   []snapshotUnbonding
}

func encodeTime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano())
}

func decodeTime(v uint64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(v))
}

// Snapshot encodes the committed ledger, so a persistent node can restore the
// chain it was running against.
func (c *Chain) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.ledger
	s := snapshot{Version: snapshotVersion}
	for acc, denoms := range l.balances {
		for denom, v := range denoms {
			s.Balances = append(s.Balances, snapshotBalance{acc, denom, v})
		}
	}
	sort.Slice(s.Balances, func(i, j int) bool {
		if s.Balances[i].Account != s.Balances[j].Account {
			return s.Balances[i].Account < s.Balances[j].Account
		}
		return s.Balances[i].Denom < s.Balances[j].Denom
	})
	for _, t := range l.tokens {
		s.Tokens = append(s.Tokens, *t)
	}
	sort.Slice(s.Tokens, func(i, j int) bool { return s.Tokens[i].Denom < s.Tokens[j].Denom })
	for _, d := range l.delegations {
		s.Delegations = append(s.Delegations, snapshotDelegation{
			Delegator: d.delegator,
			Validator: d.validator,
			Shares:    d.shares,
			Rewards:   d.rewards,
			Accrued:   encodeTime(d.accrued),
		})
	}
	sort.Slice(s.Delegations, func(i, j int) bool {
		return delegationKey(s.Delegations[i].Delegator, s.Delegations[i].Validator) <
			delegationKey(s.Delegations[j].Delegator, s.Delegations[j].Validator)
	})
	// unbonding keeps its queue order
	for _, e := range l.unbonding {
		s.Unbonding = append(s.Unbonding, snapshotUnbonding{
			Delegator:  e.Delegator,
			Validator:  e.Validator,
			Denom:      e.Amount.Denom,
			Amount:     e.Amount.Amount,
			Completion: encodeTime(e.Completion),
		})
	}

	data, err := rlp.EncodeToBytes(&s)
	if err != nil {
		return nil, errors.Wrap(err, "encode ledger snapshot")
	}
	return data, nil
}

// Restore replaces the ledger with a snapshot. Prepared changesets become stale.
func (c *Chain) Restore(data []byte) error {
	var s snapshot
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return errors.Wrap(err, "decode ledger snapshot")
	}
	if s.Version != snapshotVersion {
		return errors.Errorf("unsupported ledger snapshot version %d", s.Version)
	}

	l := newLedger()
	for _, b := range s.Balances {
		if err := l.credit(b.Account, facility.NewCoin(b.Denom, b.Amount)); err != nil {
			return err
		}
	}
	for i := range s.Tokens {
		t := s.Tokens[i]
		l.tokens[t.Denom] = &t
	}
	for _, d := range s.Delegations {
		l.delegations[delegationKey(d.Delegator, d.Validator)] = &delegation{
			delegator: d.Delegator,
			validator: d.Validator,
			shares:    d.Shares,
			rewards:   d.Rewards,
			accrued:   decodeTime(d.Accrued),
		}
	}
	for _, e := range s.Unbonding {
		l.unbonding = append(l.unbonding, &UnbondingEntry{
			Delegator:  e.Delegator,
			Validator:  e.Validator,
			Amount:     facility.NewCoin(e.Denom, e.Amount),
			Completion: decodeTime(e.Completion),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger = l
	c.version++
	logger.Debug("ledger restored", "accounts", len(l.balances), "tokens", len(l.tokens), "delegations", len(l.delegations))
	return nil
}
