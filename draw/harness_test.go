// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/facility/sim"
	"github.com/coreumfun/draw/lvldb"
	"github.com/coreumfun/draw/state"
)

const (
	pool      = draw.Address("pool1test")
	owner     = draw.Address("core1owner")
	validator = "corevaloper1labs"
	denom     = "ucore"
)

var genesis = time.Unix(1_700_000_000, 0)

// harness executes invocations the way the runtime does: handler first, then
// the facility changeset (attached funds first), then the state bulk.
type harness struct {
	t     *testing.T
	db    *lvldb.LevelDB
	chain *sim.Chain
	clock *sim.ManualClock
}

func newHarness(t *testing.T) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	clock := sim.NewManualClock(genesis)
	return &harness{
		t:     t,
		db:    db,
		chain: sim.New(clock, sim.Options{BondDenom: denom}),
		clock: clock,
	}
}

func (h *harness) contract() (*draw.Contract, *state.State) {
	st := state.New(h.db)
	return draw.New(st, h.chain, draw.Env{Pool: pool, Time: h.now()}), st
}

func (h *harness) now() uint64 {
	return uint64(h.clock.Now().Unix())
}

func (h *harness) commit(st *state.State, sender draw.Address, funds facility.Coins, msgs []facility.Msg) error {
	var envs []facility.Envelope
	if len(funds) > 0 {
		envs = append(envs, facility.Envelope{From: sender.String(), Msg: facility.BankSend{To: pool.String(), Amount: funds}})
	}
	for _, m := range msgs {
		envs = append(envs, facility.Envelope{From: pool.String(), Msg: m})
	}
	cs, err := h.chain.Prepare(context.Background(), envs)
	if err != nil {
		return err
	}
	if err := st.Stage().Commit(h.db.Bulk()); err != nil {
		cs.Discard()
		return err
	}
	return cs.Commit()
}

func (h *harness) instantiate(msg draw.InstantiateMsg) *draw.Response {
	c, st := h.contract()
	resp, err := c.Instantiate(context.Background(), draw.Info{Sender: owner}, &msg)
	require.NoError(h.t, err)
	require.NoError(h.t, h.commit(st, owner, nil, resp.Messages))
	return resp
}

func (h *harness) exec(sender draw.Address, funds facility.Coins, msg draw.ExecuteMsg) (*draw.Response, error) {
	c, st := h.contract()
	resp, err := c.Execute(context.Background(), draw.Info{Sender: sender, Funds: funds}, &msg)
	if err != nil {
		return nil, err
	}
	if err := h.commit(st, sender, funds, resp.Messages); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *harness) query(msg draw.QueryMsg) any {
	c, _ := h.contract()
	resp, err := c.Query(context.Background(), &msg)
	require.NoError(h.t, err)
	return resp
}

func (h *harness) fund(account draw.Address, amount uint64) {
	require.NoError(h.t, h.chain.Fund(account.String(), facility.NewCoin(denom, uint256.NewInt(amount))))
}

func (h *harness) balance(account draw.Address) uint64 {
	bal, err := h.chain.Balance(context.Background(), account.String(), denom)
	require.NoError(h.t, err)
	return bal.Uint64()
}

func (h *harness) ticketDenom() string {
	return draw.TicketDenom("TICKET", pool)
}

func (h *harness) buy(sender draw.Address, n, price uint64) (*draw.Response, error) {
	return h.exec(sender, coins(denom, n*price), draw.ExecuteMsg{BuyTicket: &draw.BuyTicket{NumberOfTickets: n}})
}

func (h *harness) burn(sender draw.Address, n uint64) (*draw.Response, error) {
	return h.exec(sender, coins(h.ticketDenom(), n*1_000_000), draw.ExecuteMsg{BurnTickets: &draw.BurnTickets{NumberOfTickets: n}})
}

func (h *harness) selectWinner(sender, winner draw.Address) (*draw.Response, error) {
	return h.exec(sender, nil, draw.ExecuteMsg{SelectWinnerAndUndelegate: &draw.SelectWinnerAndUndelegate{WinnerAddress: winner}})
}

func (h *harness) sendToWinner(sender draw.Address) (*draw.Response, error) {
	return h.exec(sender, nil, draw.ExecuteMsg{SendFundsToWinner: &struct{}{}})
}

func (h *harness) addBonus(sender draw.Address, amount uint64) (*draw.Response, error) {
	return h.exec(sender, coins(denom, amount), draw.ExecuteMsg{AddBonusRewardToThePool: &draw.AddBonusRewardToThePool{Amount: uint256.NewInt(amount)}})
}

func (h *harness) state() *draw.CurrentStateResponse {
	return h.query(draw.QueryMsg{GetCurrentState: &struct{}{}}).(*draw.CurrentStateResponse)
}

func (h *harness) config() *draw.ConfigResponse {
	return h.query(draw.QueryMsg{GetContractConfig: &struct{}{}}).(*draw.ConfigResponse)
}

func (h *harness) sold() *draw.TicketsSoldResponse {
	return h.query(draw.QueryMsg{GetNumberOfTicketsSold: &struct{}{}}).(*draw.TicketsSoldResponse)
}

func (h *harness) burned() uint64 {
	return h.query(draw.QueryMsg{GetTotalTicketsBurned: &struct{}{}}).(*draw.TotalBurnedResponse).TotalBurned
}

func (h *harness) participants() *draw.ParticipantsResponse {
	return h.query(draw.QueryMsg{GetParticipants: &struct{}{}}).(*draw.ParticipantsResponse)
}

func coins(d string, amount uint64) facility.Coins {
	if amount == 0 {
		return nil
	}
	return facility.Coins{facility.NewCoin(d, uint256.NewInt(amount))}
}

func params(total, price, maxPerUser uint64) draw.InstantiateMsg {
	return draw.InstantiateMsg{
		TicketSymbol:      "TICKET",
		BaseDenom:         denom,
		Validator:         validator,
		TotalTickets:      total,
		TicketPrice:       uint256.NewInt(price),
		MaxTicketsPerUser: maxPerUser,
	}
}
