// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/state"
	"github.com/coreumfun/draw/store"
)

// Namespace prefixes every key the contract writes.
const Namespace = "draw/"

// storage is the accounting store of one pool.
type storage struct {
	config                *store.Item[*Config]
	ownership             *store.Item[*Ownership]
	contractInfo          *store.Item[*ContractInfo]
	ticketDenom           *store.Item[string]
	totalSold             *store.Counter
	totalBurned           *store.Counter
	rewardsAtUndelegation *store.Uint256
	holders               *store.Mapping[Address, uint64]
	claims                *store.Mapping[Address, *uint256.Int]
}

func newStorage(st *state.State) *storage {
	ctx := store.NewContext(st, Namespace)
	return &storage{
		config:                store.NewItem[*Config](ctx, "config"),
		ownership:             store.NewItem[*Ownership](ctx, "ownership"),
		contractInfo:          store.NewItem[*ContractInfo](ctx, "contract_info"),
		ticketDenom:           store.NewItem[string](ctx, "ticket_denom"),
		totalSold:             store.NewCounter(ctx, "total_tickets_sold"),
		totalBurned:           store.NewCounter(ctx, "total_tickets_burned"),
		rewardsAtUndelegation: store.NewUint256(ctx, "rewards_at_undelegation"),
		holders:               store.NewMapping[Address, uint64](ctx, "ticket_holders"),
		claims:                store.NewMapping[Address, *uint256.Int](ctx, "claims"),
	}
}

func (s *storage) getConfig() (*Config, error) {
	cfg, err := s.config.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("pool not instantiated")
		}
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.TicketPrice == nil {
		cfg.TicketPrice = new(uint256.Int)
	}
	if cfg.RewardsSnapshot == nil {
		cfg.RewardsSnapshot = new(uint256.Int)
	}
	if cfg.BonusPool == nil {
		cfg.BonusPool = new(uint256.Int)
	}
	return cfg, nil
}

func (s *storage) setConfig(cfg *Config) error {
	return errors.Wrap(s.config.Save(cfg), "save config")
}

func (s *storage) getOwnership() (*Ownership, error) {
	o, _, err := s.ownership.Get()
	return o, errors.Wrap(err, "load ownership")
}

func (s *storage) setOwnership(o *Ownership) error {
	return errors.Wrap(s.ownership.Save(o), "save ownership")
}

func (s *storage) getTicketDenom() (string, error) {
	denom, err := s.ticketDenom.Load()
	return denom, errors.Wrap(err, "load ticket denom")
}

func (s *storage) getTickets(holder Address) (uint64, error) {
	n, err := s.holders.Get(holder)
	return n, errors.Wrap(err, "load ticket holder")
}

func (s *storage) setTickets(holder Address, n uint64) error {
	return errors.Wrap(s.holders.Set(holder, n), "save ticket holder")
}

func (s *storage) getClaim(holder Address) (*uint256.Int, error) {
	v, err := s.claims.Get(holder)
	return v, errors.Wrap(err, "load claim")
}

func (s *storage) addClaim(holder Address, amount *uint256.Int) error {
	cur, err := s.getClaim(holder)
	if err != nil {
		return err
	}
	if _, overflow := cur.AddOverflow(cur, amount); overflow {
		return errOverflow
	}
	return errors.Wrap(s.claims.Set(holder, cur), "save claim")
}

// rangeHolders visits holders with a nonzero ticket count in address order.
func (s *storage) rangeHolders(fn func(holder Address, tickets uint64) error) error {
	return s.holders.Range(func(key []byte, tickets uint64) (bool, error) {
		if tickets == 0 {
			return true, nil
		}
		return true, fn(Address(key), tickets)
	})
}

func (s *storage) rangeClaims(fn func(holder Address, amount *uint256.Int) error) error {
	return s.claims.Range(func(key []byte, amount *uint256.Int) (bool, error) {
		return true, fn(Address(key), amount)
	})
}
