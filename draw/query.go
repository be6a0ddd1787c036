// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
)

// Query answers a read-only query. The state is never modified.
func (c *Contract) Query(ctx context.Context, msg *QueryMsg) (any, error) {
	switch {
	case msg == nil:
		return nil, reverts.UnknownMessage()
	case msg.Balance != nil:
		return c.queryBalance(ctx, msg.Balance.Account)
	case msg.GetParticipants != nil:
		return c.queryParticipants()
	case msg.GetWinner != nil:
		return c.queryWinner()
	case msg.GetCurrentState != nil:
		return c.queryCurrentState()
	case msg.GetNumberOfTicketsSold != nil:
		return c.queryTicketsSold()
	case msg.GetBonusRewards != nil:
		cfg, err := c.storage.getConfig()
		if err != nil {
			return nil, err
		}
		return &BonusRewardsResponse{BonusRewards: cfg.BonusPool}, nil
	case msg.GetAccumulatedRewards != nil:
		cfg, err := c.storage.getConfig()
		if err != nil {
			return nil, err
		}
		rewards, err := c.accruedRewards(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &AccumulatedRewardsResponse{AccumulatedRewards: rewards}, nil
	case msg.GetAccumulatedRewardsAtUndelegation != nil:
		rewards, err := c.storage.rewardsAtUndelegation.Get()
		if err != nil {
			return nil, errors.Wrap(err, "load rewards snapshot")
		}
		return &AccumulatedRewardsResponse{AccumulatedRewards: rewards}, nil
	case msg.GetDraftTvl != nil:
		return c.queryDraftTvl()
	case msg.GetTicketHolders != nil:
		return c.queryTicketHolders(ctx)
	case msg.GetUserNumberOfTickets != nil:
		tickets, err := c.storage.getTickets(msg.GetUserNumberOfTickets.Address)
		if err != nil {
			return nil, err
		}
		return &UserTicketsResponse{Address: msg.GetUserNumberOfTickets.Address, Tickets: tickets}, nil
	case msg.GetUserWinChance != nil:
		return c.queryUserWinChance(msg.GetUserWinChance.Address)
	case msg.GetTotalTicketsBurned != nil:
		burned, err := c.storage.totalBurned.Get()
		if err != nil {
			return nil, err
		}
		return &TotalBurnedResponse{TotalBurned: burned}, nil
	case msg.GetClaims != nil:
		return c.queryClaims(msg.GetClaims.Address)
	case msg.GetDelegatedAmount != nil:
		return c.queryDelegatedAmount(ctx)
	case msg.GetContractConfig != nil:
		return c.queryConfig()
	case msg.GetOwnership != nil:
		o, err := c.storage.getOwnership()
		if err != nil {
			return nil, err
		}
		resp := &OwnershipResponse{Owner: optAddress(o.Owner), PendingOwner: optAddress(o.PendingOwner)}
		if o.HasExpiry {
			expiry := o.PendingExpiry
			resp.PendingExpiry = &expiry
		}
		return resp, nil
	case msg.GetContractVersion != nil:
		info, err := c.storage.contractInfo.Load()
		return info, errors.Wrap(err, "load contract info")
	}
	return nil, reverts.UnknownMessage()
}

func (c *Contract) queryBalance(ctx context.Context, account Address) (*BalanceResponse, error) {
	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}
	bal, err := c.querier.TokenBalance(ctx, account.String(), denom)
	if err != nil {
		return nil, errors.Wrap(err, "query ticket balance")
	}
	return &BalanceResponse{Balance: bal}, nil
}

// queryParticipants lists the internal ledger of ticket holders.
func (c *Contract) queryParticipants() (*ParticipantsResponse, error) {
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	participants := []ParticipantInfo{}
	err = c.storage.rangeHolders(func(holder Address, tickets uint64) error {
		participants = append(participants, ParticipantInfo{
			Address:   holder,
			Tickets:   tickets,
			WinChance: WinChance(tickets, sold),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "range ticket holders")
	}
	return &ParticipantsResponse{Participants: participants, TotalParticipants: uint64(len(participants))}, nil
}

// queryTicketHolders lists the holders known to the token ledger, which includes
// accounts that received tickets peer-to-peer.
func (c *Contract) queryTicketHolders(ctx context.Context) (*TicketHoldersResponse, error) {
	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	list, err := c.querier.TokenHolders(ctx, denom)
	if err != nil {
		return nil, errors.Wrap(err, "query ticket holders")
	}
	holders := []ParticipantInfo{}
	for _, h := range list {
		if Address(h.Address) == c.env.Pool {
			continue
		}
		tickets := new(uint256.Int).Div(h.Balance, ticketUnit)
		if tickets.IsZero() {
			continue
		}
		n := tickets.Uint64()
		holders = append(holders, ParticipantInfo{
			Address:   Address(h.Address),
			Tickets:   n,
			WinChance: WinChance(n, sold),
		})
	}
	return &TicketHoldersResponse{Holders: holders, TotalHolders: uint64(len(holders))}, nil
}

func (c *Contract) queryWinner() (*WinnerResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	payout, err := cfg.Payout()
	if err != nil {
		return nil, err
	}
	return &WinnerResponse{Winner: optAddress(cfg.Winner), Rewards: payout, Paid: cfg.WinnerPaid}, nil
}

func (c *Contract) queryCurrentState() (*CurrentStateResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	return &CurrentStateResponse{State: cfg.Phase, UndelegationDoneTimestamp: cfg.deadline()}, nil
}

func (c *Contract) queryTicketsSold() (*TicketsSoldResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	return &TicketsSoldResponse{
		TotalTickets:     cfg.TotalTickets,
		TicketsSold:      sold,
		TicketsRemaining: cfg.TotalTickets - sold,
	}, nil
}

func (c *Contract) queryDraftTvl() (*DraftTvlResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	tvl, err := mul(uint256.NewInt(sold), cfg.TicketPrice)
	if err != nil {
		return nil, err
	}
	return &DraftTvlResponse{Tvl: tvl, Denom: cfg.BaseDenom}, nil
}

func (c *Contract) queryUserWinChance(addr Address) (*UserWinChanceResponse, error) {
	tickets, err := c.storage.getTickets(addr)
	if err != nil {
		return nil, err
	}
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	return &UserWinChanceResponse{Address: addr, Tickets: tickets, WinChance: WinChance(tickets, sold)}, nil
}

func (c *Contract) queryClaims(addr *Address) (*ClaimsResponse, error) {
	resp := &ClaimsResponse{Claims: []ClaimInfo{}, TotalClaimed: new(uint256.Int)}
	if addr != nil {
		amount, err := c.storage.getClaim(*addr)
		if err != nil {
			return nil, err
		}
		if !amount.IsZero() {
			resp.Claims = append(resp.Claims, ClaimInfo{Address: *addr, Amount: amount})
			resp.TotalClaimed = amount
		}
		return resp, nil
	}
	err := c.storage.rangeClaims(func(holder Address, amount *uint256.Int) error {
		resp.Claims = append(resp.Claims, ClaimInfo{Address: holder, Amount: amount})
		if _, overflow := resp.TotalClaimed.AddOverflow(resp.TotalClaimed, amount); overflow {
			return errOverflow
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Contract) queryDelegatedAmount(ctx context.Context) (*DelegatedAmountResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	d, err := c.querier.Delegation(ctx, c.env.Pool.String(), cfg.Validator)
	if err != nil {
		return nil, errors.Wrap(err, "query delegation")
	}
	if d == nil || d.Amount.Amount == nil {
		return &DelegatedAmountResponse{Amount: facility.Coin{Denom: cfg.BaseDenom, Amount: new(uint256.Int)}}, nil
	}
	return &DelegatedAmountResponse{Amount: d.Amount}, nil
}

func (c *Contract) queryConfig() (*ConfigResponse, error) {
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	o, err := c.storage.getOwnership()
	if err != nil {
		return nil, err
	}
	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{
		Owner:                     optAddress(o.Owner),
		TicketSymbol:              cfg.TicketSymbol,
		TicketDenom:               denom,
		CoreDenom:                 cfg.BaseDenom,
		ValidatorAddress:          cfg.Validator,
		TotalTickets:              cfg.TotalTickets,
		TicketPrice:               cfg.TicketPrice,
		MaxTicketsPerUser:         cfg.MaxTicketsPerUser,
		UnbondingPeriod:           cfg.UnbondingPeriod,
		BurnRedeemedTickets:       cfg.BurnRedeemedTickets,
		DrawState:                 cfg.Phase,
		Winner:                    optAddress(cfg.Winner),
		UndelegationDoneTimestamp: cfg.deadline(),
		AccumulatedRewards:        cfg.RewardsSnapshot,
		BonusRewards:              cfg.BonusPool,
		WinnerPaid:                cfg.WinnerPaid,
	}, nil
}
