// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package draw implements the no-loss lottery pool: ticket sales delegated to a
// validator, winner settlement out of the staking rewards and full principal
// refunds on ticket burn.
package draw

import (
	"context"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/state"
)

var logger = log.WithContext("pkg", "draw")

var errOverflow = reverts.ArithmeticOverflow()

// Env is the execution environment of an invocation.
type Env struct {
	// Pool is the address of the pool account.
	Pool Address
	// Time is the block time in unix seconds.
	Time uint64
}

// Info describes the caller of an invocation.
type Info struct {
	Sender Address
	// Funds are the coins attached to the invocation. They move to the pool
	// atomically with the outbound messages.
	Funds facility.Coins
}

// Attribute is a key/value event attribute.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the outcome of a successful invocation. Messages are sent from the
// pool account, in order, atomically with the state changes.
type Response struct {
	Messages   []facility.Msg `json:"messages"`
	Attributes []Attribute    `json:"attributes"`
}

func (r *Response) addMessage(msg facility.Msg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

func (r *Response) addAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{key, value})
	return r
}

// Attribute returns the value of the first attribute named key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Contract binds the pool logic to a state, a facility querier and an environment.
// Handlers mutate the state directly; the caller is responsible for reverting it
// when a handler returns an error.
type Contract struct {
	storage *storage
	querier facility.Querier
	env     Env
}

func New(st *state.State, querier facility.Querier, env Env) *Contract {
	return &Contract{
		storage: newStorage(st),
		querier: querier,
		env:     env,
	}
}

// TicketDenom derives the ticket token denomination of a pool.
func TicketDenom(symbol string, pool Address) string {
	return ticketSubunit(symbol) + "-" + string(pool)
}

// Execute dispatches msg to its handler.
func (c *Contract) Execute(ctx context.Context, info Info, msg *ExecuteMsg) (*Response, error) {
	if msg == nil || msg.Kind() == "" {
		return nil, reverts.UnknownMessage()
	}
	switch {
	case msg.BuyTicket != nil:
		return c.buyTicket(ctx, info, msg.BuyTicket.NumberOfTickets)
	case msg.SelectWinnerAndUndelegate != nil:
		return c.selectWinnerAndUndelegate(ctx, info, msg.SelectWinnerAndUndelegate.WinnerAddress)
	case msg.SendFundsToWinner != nil:
		return c.sendFundsToWinner(info)
	case msg.BurnTickets != nil:
		return c.burnTickets(info, msg.BurnTickets.NumberOfTickets)
	case msg.AddBonusRewardToThePool != nil:
		return c.addBonusReward(info, msg.AddBonusRewardToThePool.Amount)
	case msg.UpdateDrawState != nil:
		return c.updateDrawState(info, msg.UpdateDrawState.NewState)
	case msg.SendFunds != nil:
		return c.sendFunds(info, msg.SendFunds.Recipient, msg.SendFunds.Amount)
	case msg.SetUndelegationTimestamp != nil:
		return c.setUndelegationTimestamp(info, msg.SetUndelegationTimestamp.Timestamp)
	case msg.TransferTokenAdmin != nil:
		return c.transferTokenAdmin(info, msg.TransferTokenAdmin.NewAdmin)
	default:
		return c.updateOwnership(info, *msg.UpdateOwnership)
	}
}

// onlyOwner rejects callers other than the current owner with Unauthorized.
func (c *Contract) onlyOwner(info Info) error {
	o, err := c.storage.getOwnership()
	if err != nil {
		return err
	}
	if o.Owner == "" || info.Sender != o.Owner {
		return reverts.Unauthorized()
	}
	return nil
}

// fundsOf returns the attached amount of denom, NoFunds if none is attached.
func fundsOf(info Info, denom string) (*uint256.Int, error) {
	coin, ok := info.Funds.Find(denom)
	if !ok || coin.Amount == nil {
		return nil, reverts.NoFunds()
	}
	return new(uint256.Int).Set(coin.Amount), nil
}

func mul(a, b *uint256.Int) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, errOverflow
	}
	return v, nil
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
