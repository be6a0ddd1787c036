// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
)

// buyTicket sells n tickets to the sender. The payment is delegated and the
// tickets are minted to the sender. Overpayment stays with the pool.
func (c *Contract) buyTicket(ctx context.Context, info Info, n uint64) (*Response, error) {
	if n == 0 {
		return nil, reverts.InvalidTicketAmount()
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Phase != PhaseOpen {
		return nil, reverts.NotOpen()
	}

	required, err := mul(uint256.NewInt(n), cfg.TicketPrice)
	if err != nil {
		return nil, err
	}
	paid, err := fundsOf(info, cfg.BaseDenom)
	if err != nil {
		return nil, err
	}
	if paid.Lt(required) {
		return nil, reverts.InsufficientFunds(required.Dec(), paid.Dec())
	}

	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	if available := cfg.TotalTickets - sold; n > available {
		return nil, reverts.InventoryExhausted(n, available)
	}

	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}
	held, err := c.heldTickets(ctx, info.Sender, denom)
	if err != nil {
		return nil, err
	}
	var available uint64
	if held < cfg.MaxTicketsPerUser {
		available = cfg.MaxTicketsPerUser - held
	}
	if n > available {
		return nil, reverts.PerUserCapExceeded(n, available)
	}

	subunits, err := mul(uint256.NewInt(n), ticketUnit)
	if err != nil {
		return nil, err
	}

	sold += n
	if err := c.storage.totalSold.Set(sold); err != nil {
		return nil, err
	}
	tickets, err := c.storage.getTickets(info.Sender)
	if err != nil {
		return nil, err
	}
	if err := c.storage.setTickets(info.Sender, tickets+n); err != nil {
		return nil, err
	}

	resp := &Response{}
	resp.addMessage(facility.Delegate{
		Validator: cfg.Validator,
		Amount:    facility.Coin{Denom: cfg.BaseDenom, Amount: required},
	}).addMessage(facility.MintTokens{
		Coin:      facility.Coin{Denom: denom, Amount: subunits},
		Recipient: info.Sender.String(),
	}).
		addAttribute("action", "buy_ticket").
		addAttribute("buyer", info.Sender.String()).
		addAttribute("tickets_purchased", u64(n)).
		addAttribute("payment_amount", required.Dec())

	if sold == cfg.TotalTickets {
		cfg.Phase = PhaseSoldOut
		if err := c.storage.setConfig(cfg); err != nil {
			return nil, err
		}
		resp.addAttribute("ticket_sales", "closed").
			addAttribute("new_state", PhaseSoldOut.String())
		logger.Debug("ticket sales closed", "pool", c.env.Pool, "sold", sold)
	}
	return resp, nil
}

// heldTickets returns the whole tickets the external token ledger credits to holder.
func (c *Contract) heldTickets(ctx context.Context, holder Address, denom string) (uint64, error) {
	bal, err := c.querier.TokenBalance(ctx, holder.String(), denom)
	if err != nil {
		return 0, errors.Wrap(err, "query ticket balance")
	}
	whole := new(uint256.Int).Div(bal, ticketUnit)
	if !whole.IsUint64() {
		return ^uint64(0), nil
	}
	return whole.Uint64(), nil
}

// burnTickets redeems n tickets handed in with the invocation for their full price.
func (c *Contract) burnTickets(info Info, n uint64) (*Response, error) {
	if n == 0 {
		return nil, reverts.InvalidTicketAmount()
	}
	cfg, err := c.storage.getConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Phase != PhaseWinnerPicked && cfg.Phase != PhaseUnbondingMatured {
		return nil, reverts.InvalidPhase(PhaseUnbondingMatured, cfg.Phase)
	}

	resp := &Response{}
	// with no deadline, as only a forced phase leaves it, the burn is not gated on time
	if cfg.Phase == PhaseWinnerPicked && cfg.HasDeadline {
		if c.env.Time < cfg.Deadline {
			return nil, reverts.UnbondingNotMatured(c.env.Time, cfg.Deadline)
		}
		cfg.Phase = PhaseUnbondingMatured
	}

	denom, err := c.storage.getTicketDenom()
	if err != nil {
		return nil, err
	}
	handedIn, err := fundsOf(info, denom)
	if err != nil {
		return nil, err
	}
	subunits, err := mul(uint256.NewInt(n), ticketUnit)
	if err != nil {
		return nil, err
	}
	if handedIn.Lt(subunits) {
		return nil, reverts.InsufficientFunds(subunits.Dec(), handedIn.Dec())
	}

	tickets, err := c.storage.getTickets(info.Sender)
	if err != nil {
		return nil, err
	}
	if tickets < n {
		return nil, reverts.InsufficientTickets(n, tickets)
	}
	refund, err := mul(uint256.NewInt(n), cfg.TicketPrice)
	if err != nil {
		return nil, err
	}

	burned, err := c.storage.totalBurned.Get()
	if err != nil {
		return nil, err
	}
	sold, err := c.storage.totalSold.Get()
	if err != nil {
		return nil, err
	}
	burned += n
	if burned > sold {
		return nil, errors.Errorf("burned %d exceeds sold %d", burned, sold)
	}

	if err := c.storage.setTickets(info.Sender, tickets-n); err != nil {
		return nil, err
	}
	if err := c.storage.totalBurned.Set(burned); err != nil {
		return nil, err
	}
	if err := c.storage.addClaim(info.Sender, refund); err != nil {
		return nil, err
	}

	resp.addMessage(facility.BankSend{
		To:     info.Sender.String(),
		Amount: facility.Coins{{Denom: cfg.BaseDenom, Amount: refund}},
	})
	if cfg.BurnRedeemedTickets {
		resp.addMessage(facility.BurnTokens{Coin: facility.Coin{Denom: denom, Amount: subunits}})
	}
	resp.addAttribute("action", "burn_tickets").
		addAttribute("burner", info.Sender.String()).
		addAttribute("tickets_burned", u64(n)).
		addAttribute("refund_amount", refund.Dec())

	if burned == sold {
		cfg.Phase = PhaseFinished
		resp.addAttribute("new_state", PhaseFinished.String())
		logger.Info("draw finished", "pool", c.env.Pool, "burned", burned)
	}
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}
	return resp, nil
}

// WinChance formats tickets/sold as a percentage with two decimals.
func WinChance(tickets, sold uint64) string {
	if tickets == 0 || sold == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(tickets)/float64(sold)*100)
}
