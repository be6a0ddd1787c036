// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/facility/sim"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/lvldb"
	"github.com/coreumfun/draw/runtime"
)

const (
	owner = draw.Address("core1owner")
	alice = draw.Address("core1alice")
	denom = "ucore"
	price = 100
)

type env struct {
	t     *testing.T
	db    *lvldb.LevelDB
	logs  *logdb.LogDB
	chain *sim.Chain
	clock *sim.ManualClock
	rt    *runtime.Runtime
}

func newEnv(t *testing.T) *env {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logs.Close()
		db.Close()
	})
	clock := sim.NewManualClock(time.Unix(1_700_000_000, 0))
	chain := sim.New(clock, sim.Options{BondDenom: denom})
	e := &env{t: t, db: db, logs: logs, chain: chain, clock: clock}
	e.rt = e.open(chain)
	return e
}

func (e *env) open(fac facility.Facility) *runtime.Runtime {
	rt, err := runtime.New(e.db, fac, e.clock, e.logs, runtime.Options{})
	require.NoError(e.t, err)
	return rt
}

func instantiateMsg() *draw.InstantiateMsg {
	return &draw.InstantiateMsg{
		TicketSymbol:      "TICKET",
		BaseDenom:         denom,
		Validator:         "corevaloper1labs",
		TotalTickets:      10,
		TicketPrice:       uint256.NewInt(price),
		MaxTicketsPerUser: 10,
	}
}

func (e *env) instantiate() {
	rcpt, err := e.rt.Instantiate(context.Background(), owner, "round-1", instantiateMsg())
	require.NoError(e.t, err)
	require.True(e.t, rcpt.Success, string(rcpt.Error))
}

func coins(amount uint64) facility.Coins {
	return facility.Coins{facility.NewCoin(denom, uint256.NewInt(amount))}
}

func (e *env) buy(sender draw.Address, n, paid uint64) *runtime.Receipt {
	rcpt, err := e.rt.Execute(context.Background(), runtime.Invocation{
		Sender: sender,
		Funds:  coins(paid),
		Msg:    &draw.ExecuteMsg{BuyTicket: &draw.BuyTicket{NumberOfTickets: n}},
	})
	require.NoError(e.t, err)
	return rcpt
}

func (e *env) sold(rt *runtime.Runtime) uint64 {
	resp, err := rt.Query(context.Background(), &draw.QueryMsg{GetNumberOfTicketsSold: &struct{}{}})
	require.NoError(e.t, err)
	return resp.(*draw.TicketsSoldResponse).TicketsSold
}

func (e *env) balance(account string) uint64 {
	bal, err := e.chain.Balance(context.Background(), account, denom)
	require.NoError(e.t, err)
	return bal.Uint64()
}

func TestPoolAddress(t *testing.T) {
	a := runtime.PoolAddress(owner, "round-1")
	assert.Equal(t, a, runtime.PoolAddress(owner, "round-1"))
	assert.NotEqual(t, a, runtime.PoolAddress(owner, "round-2"))
	assert.NotEqual(t, a, runtime.PoolAddress(alice, "round-1"))
	assert.True(t, strings.HasPrefix(a.String(), "pool1"))
	assert.Len(t, a.String(), len("pool1")+40)
}

func TestNotInstantiated(t *testing.T) {
	e := newEnv(t)
	_, err := e.rt.Execute(context.Background(), runtime.Invocation{Sender: alice, Msg: &draw.ExecuteMsg{SendFundsToWinner: &struct{}{}}})
	assert.ErrorIs(t, err, runtime.ErrNotInstantiated)
	_, err = e.rt.Query(context.Background(), &draw.QueryMsg{GetWinner: &struct{}{}})
	assert.ErrorIs(t, err, runtime.ErrNotInstantiated)

	e.instantiate()
	_, err = e.rt.Instantiate(context.Background(), owner, "round-2", instantiateMsg())
	assert.ErrorIs(t, err, runtime.ErrAlreadyInstantiated)
}

func TestInstantiateRejected(t *testing.T) {
	e := newEnv(t)
	msg := instantiateMsg()
	msg.TotalTickets = 0
	rcpt, err := e.rt.Instantiate(context.Background(), owner, "round-1", msg)
	require.NoError(t, err)
	assert.False(t, rcpt.Success)
	assert.Equal(t, reverts.KindInvalidTicketAmount, rcpt.ErrorKind())
	assert.Equal(t, draw.Address(""), e.rt.Pool())
	assert.Equal(t, uint64(1), e.rt.Seq())

	e.instantiate()
	assert.Equal(t, runtime.PoolAddress(owner, "round-1"), e.rt.Pool())
	assert.Equal(t, uint64(2), e.rt.Seq())
}

func TestExecuteCommitsStateAndFacility(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	pool := e.rt.Pool()
	require.NoError(t, e.chain.Fund(alice.String(), coins(1_000)...))

	rcpt := e.buy(alice, 4, 4*price)
	require.True(t, rcpt.Success, string(rcpt.Error))
	assert.Equal(t, "buy_ticket", rcpt.Kind)
	assert.False(t, rcpt.Admin)
	v, ok := rcpt.Attribute("tickets_purchased")
	assert.True(t, ok)
	assert.Equal(t, "4", v)

	var msgs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rcpt.Messages, &msgs))
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "bank_send")
	assert.JSONEq(t, `"`+alice.String()+`"`, string(msgs[0]["from"]))
	assert.Contains(t, msgs[1], "delegate")
	assert.JSONEq(t, `"`+pool.String()+`"`, string(msgs[1]["from"]))
	assert.Contains(t, msgs[2], "mint")

	assert.Equal(t, uint64(4), e.sold(e.rt))
	assert.Equal(t, uint64(600), e.balance(alice.String()))
	d, err := e.chain.Delegation(context.Background(), pool.String(), "corevaloper1labs")
	require.NoError(t, err)
	assert.Equal(t, uint64(4*price), d.Amount.Amount.Uint64())
}

func TestRejectedInvocationChangesNothing(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	require.NoError(t, e.chain.Fund(alice.String(), coins(1_000)...))
	seq := e.rt.Seq()

	rcpt := e.buy(alice, 4, 4*price-1)
	assert.False(t, rcpt.Success)
	assert.Equal(t, reverts.KindInsufficientFunds, rcpt.ErrorKind())
	assert.Empty(t, rcpt.Attributes)
	assert.Nil(t, rcpt.Messages)
	assert.Equal(t, seq+1, rcpt.Seq)
	assert.Equal(t, seq+1, e.rt.Seq())

	assert.Equal(t, uint64(0), e.sold(e.rt))
	assert.Equal(t, uint64(1_000), e.balance(alice.String()))

	inv, err := e.logs.InvocationByID(context.Background(), rcpt.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.False(t, inv.Success)
	assert.Equal(t, "buy_ticket", inv.Kind)
}

func TestUnknownMessage(t *testing.T) {
	e := newEnv(t)
	e.instantiate()

	rcpt, err := e.rt.Execute(context.Background(), runtime.Invocation{Sender: alice})
	require.NoError(t, err)
	assert.Equal(t, "unknown", rcpt.Kind)
	assert.Equal(t, reverts.KindUnknownMessage, rcpt.ErrorKind())
}

func TestInvalidFunds(t *testing.T) {
	e := newEnv(t)
	e.instantiate()

	rcpt, err := e.rt.Execute(context.Background(), runtime.Invocation{
		Sender: alice,
		Funds:  append(coins(price), coins(price)...),
		Msg:    &draw.ExecuteMsg{BuyTicket: &draw.BuyTicket{NumberOfTickets: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, reverts.KindInvalidParameter, rcpt.ErrorKind())
}

// attached funds the sender does not hold fail at prepare, after the handler ran.
func TestFundsLegRejected(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	require.NoError(t, e.chain.Fund(alice.String(), coins(price)...))

	rcpt := e.buy(alice, 2, 2*price)
	assert.False(t, rcpt.Success)
	assert.Equal(t, reverts.KindFacilityRejected, rcpt.ErrorKind())
	assert.Equal(t, uint64(0), e.sold(e.rt))
	assert.Equal(t, uint64(price), e.balance(alice.String()))
}

type failingCommit struct {
	*sim.Chain
}

func (f failingCommit) Prepare(ctx context.Context, msgs []facility.Envelope) (facility.Changeset, error) {
	cs, err := f.Chain.Prepare(ctx, msgs)
	if err != nil {
		return nil, err
	}
	return failingChangeset{cs}, nil
}

type failingChangeset struct {
	facility.Changeset
}

func (c failingChangeset) Commit() error {
	c.Discard()
	return errors.New("connection lost")
}

func TestCommitFailureRestoresState(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	require.NoError(t, e.chain.Fund(alice.String(), coins(1_000)...))
	require.True(t, e.buy(alice, 1, price).Success)

	e.rt = e.open(failingCommit{e.chain})
	rcpt := e.buy(alice, 2, 2*price)
	assert.False(t, rcpt.Success)
	assert.Equal(t, reverts.KindFacilityRejected, rcpt.ErrorKind())
	assert.Equal(t, uint64(1), e.sold(e.rt))
	assert.Equal(t, uint64(1_000-price), e.balance(alice.String()))

	resp, err := e.rt.Query(context.Background(), &draw.QueryMsg{GetUserNumberOfTickets: &draw.AddressQuery{Address: alice}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.(*draw.UserTicketsResponse).Tickets)
}

func TestResume(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	require.NoError(t, e.chain.Fund(alice.String(), coins(1_000)...))
	e.buy(alice, 3, 3*price)
	e.buy(alice, 1, 0)

	rt := e.open(e.chain)
	assert.Equal(t, e.rt.Pool(), rt.Pool())
	assert.Equal(t, uint64(3), rt.Seq())
	assert.Equal(t, uint64(3), e.sold(rt))

	rcpt := e.buy(alice, 1, price)
	assert.Equal(t, uint64(4), rcpt.Seq)
}

func TestReceiptLookup(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	require.NoError(t, e.chain.Fund(alice.String(), coins(1_000)...))
	rcpt := e.buy(alice, 2, 2*price)
	require.True(t, rcpt.Success)

	cached, err := e.rt.Receipt(context.Background(), rcpt.ID)
	require.NoError(t, err)
	assert.Same(t, rcpt, cached)

	loaded, err := e.open(e.chain).Receipt(context.Background(), rcpt.ID)
	require.NoError(t, err)
	assert.Equal(t, rcpt.ID, loaded.ID)
	assert.Equal(t, rcpt.Seq, loaded.Seq)
	assert.Equal(t, rcpt.Attributes, loaded.Attributes)
	assert.JSONEq(t, string(rcpt.Messages), string(loaded.Messages))
	require.Len(t, loaded.Funds, 1)
	assert.Equal(t, uint64(2*price), loaded.Funds[0].Amount.Uint64())

	_, err = e.rt.Receipt(context.Background(), "0x00")
	assert.ErrorIs(t, err, runtime.ErrReceiptNotFound)
}

func TestWaiterWokenByInvocation(t *testing.T) {
	e := newEnv(t)
	e.instantiate()
	w := e.rt.NewWaiter()

	e.buy(alice, 1, 0)
	select {
	case <-w.C():
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestSoloClock(t *testing.T) {
	c := runtime.NewSoloClock()
	before := c.Now()
	require.NoError(t, c.Advance(time.Hour))
	assert.Equal(t, time.Hour, c.Offset())
	assert.True(t, c.Now().Sub(before) >= time.Hour)
	assert.Error(t, c.Advance(-time.Second))
	assert.Equal(t, time.Hour, c.Offset())
}
