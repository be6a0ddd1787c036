// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package facility defines the boundary presented by the staking, fungible-token
// and bank facilities the pool settles against.
package facility

import (
	"context"

	"github.com/holiman/uint256"
)

// Delegation is the bonded amount of a delegator at a validator.
type Delegation struct {
	Delegator string `json:"delegator_address"`
	Validator string `json:"validator_address"`
	Amount    Coin   `json:"balance"`
}

// Holder is an account holding a token.
type Holder struct {
	Address string       `json:"address"`
	Balance *uint256.Int `json:"balance"`
}

// Querier is the read side of the facilities.
type Querier interface {
	// Balance returns the bank balance of account in denom.
	Balance(ctx context.Context, account, denom string) (*uint256.Int, error)
	// TokenBalance returns the fungible-token balance of account in denom.
	TokenBalance(ctx context.Context, account, denom string) (*uint256.Int, error)
	// TokenHolders enumerates accounts holding a nonzero balance of denom, in address order.
	TokenHolders(ctx context.Context, denom string) ([]Holder, error)
	// Delegation returns the current delegation, or nil if there is none.
	Delegation(ctx context.Context, delegator, validator string) (*Delegation, error)
	// DelegationRewards returns the accrued, not yet withdrawn rewards.
	DelegationRewards(ctx context.Context, delegator, validator string) ([]DecCoin, error)
}

// Changeset is a validated set of facility mutations. Exactly one of Commit or
// Discard must be called.
type Changeset interface {
	Commit() error
	Discard()
}

// Applier applies outbound messages atomically in two phases.
type Applier interface {
	// Prepare validates msgs against current facility state and reserves their effects.
	// Nothing is observable until the returned changeset is committed.
	Prepare(ctx context.Context, msgs []Envelope) (Changeset, error)
}

// Facility is the full facility boundary.
type Facility interface {
	Querier
	Applier
}
