// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"context"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
)

// accruedRewards queries the live staking rewards of the pool, floored, in the base denom.
func (c *Contract) accruedRewards(ctx context.Context, cfg *Config) (*uint256.Int, error) {
	rewards, err := c.querier.DelegationRewards(ctx, c.env.Pool.String(), cfg.Validator)
	if err != nil {
		return nil, errors.Wrap(err, "query delegation rewards")
	}
	total, err := facility.SumFloor(rewards, cfg.BaseDenom)
	if err != nil {
		return nil, errors.Wrap(err, "sum delegation rewards")
	}
	return total, nil
}

func (c *Contract) selectWinnerAndUndelegate(ctx context.Context, info Info, winner Address) (*Response, error) {
	if err := c.onlyOwner(info); err != nil {
		return nil, err
	}
	if strings.TrimSpace(winner.String()) == "" {
		return nil, reverts.InvalidParameter("winner_address", "empty")
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Phase != PhaseSoldOut {
		return nil, reverts.InvalidPhase(PhaseSoldOut, cfg.Phase)
	}
	tickets, err := c.storage.getTickets(winner)
	if err != nil {
		return nil, err
	}
	if tickets == 0 {
		return nil, reverts.WinnerHoldsNoTickets()
	}

	snapshot, err := c.accruedRewards(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.storage.rewardsAtUndelegation.Set(snapshot); err != nil {
		return nil, errors.Wrap(err, "save rewards snapshot")
	}

	deadline := c.env.Time + cfg.UnbondingPeriod
	if deadline < c.env.Time {
		return nil, errOverflow
	}
	cfg.Winner = winner
	cfg.RewardsSnapshot = snapshot
	cfg.Phase = PhaseWinnerPicked
	cfg.HasDeadline = true
	cfg.Deadline = deadline
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}

	payout, err := cfg.Payout()
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	delegation, err := c.querier.Delegation(ctx, c.env.Pool.String(), cfg.Validator)
	if err != nil {
		return nil, errors.Wrap(err, "query delegation")
	}
	if delegation != nil && delegation.Amount.Amount != nil && !delegation.Amount.Amount.IsZero() {
		resp.addMessage(facility.Undelegate{
			Validator: cfg.Validator,
			Amount:    facility.NewCoin(cfg.BaseDenom, delegation.Amount.Amount),
		})
	}
	resp.addAttribute("action", "select_winner_and_undelegate").
		addAttribute("winner", winner.String()).
		addAttribute("rewards_amount", payout.Dec()).
		addAttribute("undelegation_done_timestamp", u64(deadline)).
		addAttribute("new_state", PhaseWinnerPicked.String())

	logger.Info("winner selected", "pool", c.env.Pool, "winner", winner, "rewards", snapshot, "deadline", deadline)
	return resp, nil
}

// sendFundsToWinner pays the rewards snapshot plus the bonus pool, once.
func (c *Contract) sendFundsToWinner(info Info) (*Response, error) {
	if err := c.onlyOwner(info); err != nil {
		return nil, err
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Phase != PhaseWinnerPicked {
		return nil, reverts.InvalidPhase(PhaseWinnerPicked, cfg.Phase)
	}
	if cfg.HasDeadline && c.env.Time < cfg.Deadline {
		return nil, reverts.UnbondingNotMatured(c.env.Time, cfg.Deadline)
	}
	if cfg.Winner == "" {
		return nil, reverts.NoWinner()
	}
	if cfg.WinnerPaid {
		return nil, reverts.WinnerAlreadyPaid()
	}
	payout, err := cfg.Payout()
	if err != nil {
		return nil, err
	}

	cfg.WinnerPaid = true
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}

	resp := &Response{}
	if !payout.IsZero() {
		resp.addMessage(facility.BankSend{
			To:     cfg.Winner.String(),
			Amount: facility.Coins{{Denom: cfg.BaseDenom, Amount: payout}},
		})
	}
	resp.addAttribute("action", "send_funds_to_winner").
		addAttribute("winner", cfg.Winner.String()).
		addAttribute("rewards_amount", payout.Dec())

	logger.Info("winner paid", "pool", c.env.Pool, "winner", cfg.Winner, "amount", payout)
	return resp, nil
}

// addBonusReward adds sponsor funds to the winner payout. Any account may contribute
// until the payout is made.
func (c *Contract) addBonusReward(info Info, amount *uint256.Int) (*Response, error) {
	if amount == nil || amount.IsZero() {
		return nil, reverts.InvalidParameter("amount", "must be positive")
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Phase == PhaseFinished || cfg.WinnerPaid {
		return nil, reverts.BonusClosed(cfg.Phase)
	}
	sent, err := fundsOf(info, cfg.BaseDenom)
	if err != nil {
		return nil, err
	}
	if sent.Lt(amount) {
		return nil, reverts.InsufficientFunds(amount.Dec(), sent.Dec())
	}
	if _, overflow := cfg.BonusPool.AddOverflow(cfg.BonusPool, amount); overflow {
		return nil, errOverflow
	}
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.addAttribute("action", "add_bonus_reward").
		addAttribute("sender", info.Sender.String()).
		addAttribute("amount", amount.Dec())
	return resp, nil
}
