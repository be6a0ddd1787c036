// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/facility/lcd"
)

type inspectTarget struct {
	Delegator   string
	Validator   string
	Denom       string
	TicketDenom string
}

func inspectAction(ctx *cli.Context) error {
	target := inspectTarget{
		Delegator:   ctx.String(delegatorFlag.Name),
		Validator:   ctx.String(validatorFlag.Name),
		Denom:       ctx.String(denomFlag.Name),
		TicketDenom: ctx.String(ticketDenomFlag.Name),
	}
	if target.Delegator == "" || target.Validator == "" {
		return errors.Errorf("-%s and -%s are required", delegatorFlag.Name, validatorFlag.Name)
	}
	client := lcd.NewClient(ctx.String(lcdURLFlag.Name), &http.Client{Timeout: 10 * time.Second})

	c, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return inspect(c, client, os.Stdout, target)
}

// inspect prints the bank balance, delegation, pending rewards and ticket holders of a pool.
func inspect(ctx context.Context, q facility.Querier, w io.Writer, t inspectTarget) error {
	bal, err := q.Balance(ctx, t.Delegator, t.Denom)
	if err != nil {
		return errors.WithMessage(err, "balance")
	}
	fmt.Fprintf(w, "Balance      %v%v\n", bal.Dec(), t.Denom)

	d, err := q.Delegation(ctx, t.Delegator, t.Validator)
	if err != nil {
		return errors.WithMessage(err, "delegation")
	}
	if d == nil {
		fmt.Fprintf(w, "Delegation   none\n")
	} else {
		fmt.Fprintf(w, "Delegation   %v\n", d.Amount)
	}

	rewards, err := q.DelegationRewards(ctx, t.Delegator, t.Validator)
	if err != nil {
		return errors.WithMessage(err, "rewards")
	}
	if len(rewards) == 0 {
		fmt.Fprintf(w, "Rewards      none\n")
	}
	for _, r := range rewards {
		fmt.Fprintf(w, "Rewards      %v%v\n", r.Amount, r.Denom)
	}

	if t.TicketDenom == "" {
		return nil
	}
	holders, err := q.TokenHolders(ctx, t.TicketDenom)
	if err != nil {
		return errors.WithMessage(err, "holders")
	}
	fmt.Fprintf(w, "Holders      %d\n", len(holders))
	for _, h := range holders {
		fmt.Fprintf(w, "    %v %v\n", h.Address, h.Balance.Dec())
	}
	return nil
}
