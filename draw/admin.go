// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"strings"

	"github.com/holiman/uint256"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
)

// updateDrawState forces the round into any phase. No other field is touched.
func (c *Contract) updateDrawState(info Info, phase Phase) (*Response, error) {
	if err := c.onlyOwner(info); err != nil {
		return nil, err
	}
	if int(phase) >= len(phaseNames) {
		return nil, reverts.InvalidParameter("new_state", phase.String())
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	from := cfg.Phase
	cfg.Phase = phase
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}

	logger.Warn("draw state overridden", "pool", c.env.Pool, "owner", info.Sender, "from", from, "to", phase)

	resp := &Response{}
	resp.addAttribute("action", "update_draw_state").
		addAttribute("previous_state", from.String()).
		addAttribute("new_state", phase.String())
	return resp, nil
}

// sendFunds moves base-asset out of the pool to any recipient.
func (c *Contract) sendFunds(info Info, recipient Address, amount *uint256.Int) (*Response, error) {
	if err := c.onlyOwner(info); err != nil {
		return nil, err
	}
	if strings.TrimSpace(recipient.String()) == "" {
		return nil, reverts.InvalidParameter("recipient", "empty")
	}
	if amount == nil || amount.IsZero() {
		return nil, reverts.InvalidParameter("amount", "must be positive")
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}

	logger.Warn("funds sent by owner", "pool", c.env.Pool, "owner", info.Sender, "recipient", recipient, "amount", amount, "denom", cfg.BaseDenom)

	resp := &Response{}
	resp.addMessage(facility.BankSend{
		To:     recipient.String(),
		Amount: facility.Coins{facility.NewCoin(cfg.BaseDenom, amount)},
	}).
		addAttribute("action", "send_funds").
		addAttribute("recipient", recipient.String()).
		addAttribute("amount", amount.Dec())
	return resp, nil
}

// setUndelegationTimestamp overrides the unbonding deadline of the picked winner.
func (c *Contract) setUndelegationTimestamp(info Info, timestamp uint64) (*Response, error) {
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
	previous, hadDeadline := cfg.Deadline, cfg.HasDeadline
	cfg.HasDeadline = true
	cfg.Deadline = timestamp
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}

	logger.Warn("unbonding deadline overridden", "pool", c.env.Pool, "owner", info.Sender, "previous", previous, "had_deadline", hadDeadline, "deadline", timestamp)

	resp := &Response{}
	resp.addAttribute("action", "set_undelegation_timestamp").
		addAttribute("timestamp", u64(timestamp))
	return resp, nil
}

// transferTokenAdmin hands the ticket token admin role to another account.
func (c *Contract) transferTokenAdmin(info Info, newAdmin Address) (*Response, error) {
	if err := c.onlyOwner(info); err != nil {
		return nil, err
	}
	if strings.TrimSpace(newAdmin.String()) == "" {
		return nil, reverts.InvalidParameter("new_admin", "empty")
	}
	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}

	logger.Warn("ticket token admin transferred", "pool", c.env.Pool, "owner", info.Sender, "denom", denom, "new_admin", newAdmin)

	resp := &Response{}
	resp.addMessage(facility.TransferTokenAdmin{Denom: denom, NewAdmin: newAdmin.String()}).
		addAttribute("action", "transfer_token_admin").
		addAttribute("denom", denom).
		addAttribute("new_admin", newAdmin.String())
	return resp, nil
}
