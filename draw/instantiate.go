// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"context"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
)

const (
	ticketDescription = "Draft tickets for Coreum No-Loss Draft on coreum.fun"
	ticketURI         = "https://coreum.fun"
)

var symbolPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{2,127}$`)

func ticketSubunit(symbol string) string {
	return "u" + strings.ToLower(symbol)
}

// Validate checks the round parameters.
func (m *InstantiateMsg) Validate() error {
	switch {
	case m.TotalTickets == 0:
		return reverts.InvalidTicketAmount()
	case m.TicketPrice == nil || m.TicketPrice.IsZero():
		return reverts.InvalidTicketPrice()
	case m.MaxTicketsPerUser == 0:
		return reverts.InvalidTicketAmount()
	case !symbolPattern.MatchString(m.TicketSymbol):
		return reverts.InvalidParameter("ticket_token_symbol", "must be 3 to 128 alphanumerics starting with a letter")
	case strings.TrimSpace(m.BaseDenom) == "":
		return reverts.InvalidParameter("core_denom", "empty")
	case strings.TrimSpace(m.Validator) == "":
		return reverts.InvalidParameter("validator_address", "empty")
	}
	return nil
}

// Instantiate creates the round: config and counters are written, the sender
// becomes the owner and the ticket token is issued.
func (c *Contract) Instantiate(_ context.Context, info Info, msg *InstantiateMsg) (*Response, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if exists, err := c.storage.config.Exists(); err != nil {
		return nil, errors.Wrap(err, "load config")
	} else if exists {
		return nil, errors.New("pool already instantiated")
	}

	period := msg.UnbondingPeriod
	if period == 0 {
		period = DefaultUnbondingPeriod
	}
	cfg := &Config{
		TicketSymbol:        msg.TicketSymbol,
		BaseDenom:           msg.BaseDenom,
		Validator:           msg.Validator,
		TotalTickets:        msg.TotalTickets,
		TicketPrice:         new(uint256.Int).Set(msg.TicketPrice),
		MaxTicketsPerUser:   msg.MaxTicketsPerUser,
		UnbondingPeriod:     period,
		BurnRedeemedTickets: msg.BurnRedeemedTickets,
		Phase:               PhaseOpen,
		RewardsSnapshot:     new(uint256.Int),
		BonusPool:           new(uint256.Int),
	}
	denom := TicketDenom(msg.TicketSymbol, c.env.Pool)

	if err := c.storage.contractInfo.Save(&ContractInfo{Contract: ContractName, Version: ContractVersion}); err != nil {
		return nil, errors.Wrap(err, "save contract info")
	}
	if err := c.storage.setConfig(cfg); err != nil {
		return nil, err
	}
	if err := c.storage.setOwnership(&Ownership{Owner: info.Sender}); err != nil {
		return nil, err
	}
	if err := c.storage.ticketDenom.Save(denom); err != nil {
		return nil, errors.Wrap(err, "save ticket denom")
	}
	if err := c.storage.totalSold.Set(0); err != nil {
		return nil, err
	}
	if err := c.storage.totalBurned.Set(0); err != nil {
		return nil, err
	}

	logger.Info("pool instantiated", "pool", c.env.Pool, "owner", info.Sender, "denom", denom, "tickets", msg.TotalTickets)

	resp := &Response{}
	resp.addMessage(facility.IssueToken{
		Symbol:        msg.TicketSymbol,
		Subunit:       ticketSubunit(msg.TicketSymbol),
		Precision:     TicketPrecision,
		InitialAmount: facility.Coin{Denom: denom, Amount: new(uint256.Int)},
		Description:   ticketDescription,
		Features:      []string{facility.FeatureMinting, facility.FeatureBurning},
		URI:           ticketURI,
	}).
		addAttribute("method", "instantiate").
		addAttribute("owner", info.Sender.String()).
		addAttribute("ticket_token_symbol", msg.TicketSymbol).
		addAttribute("ticket_denom", denom).
		addAttribute("validator_address", msg.Validator).
		addAttribute("total_tickets", u64(msg.TotalTickets)).
		addAttribute("ticket_price", msg.TicketPrice.Dec())
	return resp, nil
}
