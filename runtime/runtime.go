// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes pool invocations one at a time. Each invocation runs
// its handler against a state checkpoint, then commits the state changes and the
// facility changeset together, or neither.
package runtime

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/coreumfun/draw/cache"
	"github.com/coreumfun/draw/co"
	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/state"
	"github.com/coreumfun/draw/store"
)

var logger = log.WithContext("pkg", "runtime")

const (
	namespace        = "runtime/"
	defaultCacheSize = 512
)

var (
	ErrNotInstantiated     = errors.New("pool not instantiated")
	ErrAlreadyInstantiated = errors.New("pool already instantiated")
	ErrReceiptNotFound     = errors.New("receipt not found")
)

// Invocation is a call of an execute message.
type Invocation struct {
	Sender draw.Address     `json:"sender"`
	Funds  facility.Coins   `json:"funds"`
	Msg    *draw.ExecuteMsg `json:"msg"`
}

// Ledger is a facility whose whole state can be captured and reloaded.
type Ledger interface {
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Options tunes the runtime.
type Options struct {
	ReceiptCacheSize int
	// Ledger, when set, is snapshotted into db in the same write as the pool
	// state of every committed invocation, and restored from db on resume.
	Ledger Ledger
}

// Runtime owns the pool state store and the facility it settles against.
type Runtime struct {
	mu       sync.RWMutex
	db       kv.Store
	facility facility.Facility
	clock    Clock
	logs     *logdb.LogDB
	ledger   Ledger
	receipts *cache.LRU[string, *Receipt]
	signal   co.Signal

	pool draw.Address
	seq  uint64
}

// New creates a runtime, resuming the pool recorded in db if there is one.
func New(db kv.Store, fac facility.Facility, clock Clock, logs *logdb.LogDB, opts Options) (*Runtime, error) {
	size := opts.ReceiptCacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	receipts, err := cache.NewLRU[string, *Receipt](size)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		db:       db,
		facility: fac,
		clock:    clock,
		logs:     logs,
		ledger:   opts.Ledger,
		receipts: receipts,
	}

	ctx := store.NewContext(state.New(db), namespace)
	pool, _, err := store.NewItem[string](ctx, "pool").Get()
	if err != nil {
		return nil, errors.Wrap(err, "load pool address")
	}
	seq, err := store.NewCounter(ctx, "seq").Get()
	if err != nil {
		return nil, errors.Wrap(err, "load sequence")
	}
	if rt.ledger != nil {
		data, found, err := ledgerItem(ctx).Get()
		if err != nil {
			return nil, errors.Wrap(err, "load ledger")
		}
		if found {
			if err := rt.ledger.Restore(data); err != nil {
				return nil, errors.WithMessage(err, "restore ledger")
			}
		}
	}
	rt.pool = draw.Address(pool)
	rt.seq = seq
	if pool != "" {
		logger.Info("pool resumed", "pool", pool, "seq", seq)
	}
	return rt, nil
}

// PoolAddress derives the address of a pool from its creator and a label.
func PoolAddress(creator draw.Address, label string) draw.Address {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(creator))
	h.Write([]byte(label))
	return draw.Address("pool1" + hex.EncodeToString(h.Sum(nil)[:20]))
}

func ledgerItem(ctx *store.Context) *store.Item[[]byte] {
	return store.NewItem[[]byte](ctx, "ledger")
}

// Pool returns the pool address, "" before instantiation.
func (rt *Runtime) Pool() draw.Address {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.pool
}

// Seq returns the sequence number of the last invocation.
func (rt *Runtime) Seq() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.seq
}

func (rt *Runtime) Clock() Clock {
	return rt.clock
}

// NewWaiter returns a waiter woken after every recorded invocation.
func (rt *Runtime) NewWaiter() co.Waiter {
	return rt.signal.NewWaiter()
}

// Instantiate creates the pool. The sender becomes its owner.
func (rt *Runtime) Instantiate(ctx context.Context, sender draw.Address, label string, msg *draw.InstantiateMsg) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.pool != "" {
		return nil, ErrAlreadyInstantiated
	}
	pool := PoolAddress(sender, label)
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	rcpt, err := rt.apply(ctx, call{
		pool:    pool,
		sender:  sender,
		kind:    "instantiate",
		admin:   true,
		payload: payload,
		handle: func(c *draw.Contract, st *state.State) (*draw.Response, error) {
			resp, err := c.Instantiate(ctx, draw.Info{Sender: sender}, msg)
			if err != nil {
				return nil, err
			}
			if err := store.NewItem[string](store.NewContext(st, namespace), "pool").Save(string(pool)); err != nil {
				return nil, err
			}
			return resp, nil
		},
	})
	if err != nil {
		return nil, err
	}
	if rcpt.Success {
		rt.pool = pool
	}
	return rcpt, nil
}

// Execute runs an execute message. A rejected invocation is not an error: the
// returned receipt carries the revert. Errors are returned only when no receipt
// could be recorded.
func (rt *Runtime) Execute(ctx context.Context, inv Invocation) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.pool == "" {
		return nil, ErrNotInstantiated
	}
	if inv.Msg == nil {
		inv.Msg = &draw.ExecuteMsg{}
	}
	payload, err := json.Marshal(inv.Msg)
	if err != nil {
		return nil, err
	}
	kind := inv.Msg.Kind()
	if kind == "" {
		kind = "unknown"
	}
	return rt.apply(ctx, call{
		pool:    rt.pool,
		sender:  inv.Sender,
		funds:   inv.Funds,
		kind:    kind,
		admin:   inv.Msg.Admin(),
		payload: payload,
		handle: func(c *draw.Contract, _ *state.State) (*draw.Response, error) {
			return c.Execute(ctx, draw.Info{Sender: inv.Sender, Funds: inv.Funds}, inv.Msg)
		},
	})
}

// Query runs a query against the committed state.
func (rt *Runtime) Query(ctx context.Context, msg *draw.QueryMsg) (any, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if rt.pool == "" {
		return nil, ErrNotInstantiated
	}
	c := draw.New(state.New(rt.db), rt.facility, draw.Env{Pool: rt.pool, Time: rt.now()})
	return c.Query(ctx, msg)
}

// Receipt returns the receipt with the given id, from the cache or the log.
func (rt *Runtime) Receipt(ctx context.Context, id string) (*Receipt, error) {
	return rt.receipts.GetOrLoad(id, func(id string) (*Receipt, error) {
		inv, err := rt.logs.InvocationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, ErrReceiptNotFound
		}
		return ReceiptOf(inv)
	})
}

func (rt *Runtime) now() uint64 {
	return uint64(rt.clock.Now().Unix())
}

type call struct {
	pool    draw.Address
	sender  draw.Address
	funds   facility.Coins
	kind    string
	admin   bool
	payload []byte
	handle  func(c *draw.Contract, st *state.State) (*draw.Response, error)
}

// apply runs c and records its receipt. Must be called with the write lock held.
func (rt *Runtime) apply(ctx context.Context, c call) (*Receipt, error) {
	start := time.Now()
	now := rt.now()
	seq := rt.seq + 1
	rcpt := &Receipt{
		ID:         receiptID(seq, now, c.sender, c.payload),
		Seq:        seq,
		Time:       now,
		Sender:     c.sender,
		Kind:       c.kind,
		Admin:      c.admin,
		Funds:      c.funds,
		Attributes: []draw.Attribute{},
	}

	st := state.New(rt.db)
	resp, err := rt.run(ctx, st, c, now)
	if err == nil {
		err = rt.commit(ctx, st, c, seq, resp, rcpt)
	}
	if err != nil {
		var revert *reverts.ErrRevert
		if !errors.As(err, &revert) {
			revert = reverts.StorageError(err)
		}
		if err := rt.reject(seq, rcpt, revert); err != nil {
			return nil, err
		}
	}
	rt.seq = seq

	inv, err := rcpt.invocation()
	if err == nil {
		err = rt.logs.Write(inv)
	}
	if err != nil {
		logger.Error("failed to record invocation", "seq", seq, "id", rcpt.ID, "err", err)
	}
	rt.receipts.Add(rcpt.ID, rcpt)
	rt.signal.Broadcast()

	outcome := "success"
	if !rcpt.Success {
		outcome = "rejected"
	}
	metricInvocationCount().AddWithLabel(1, map[string]string{"kind": c.kind, "outcome": outcome})
	metricInvocationDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"kind": c.kind})
	if rcpt.Success {
		rt.observe(ctx, c.pool)
	}
	return rcpt, nil
}

// run executes the handler under a checkpoint. On error the state is reverted.
func (rt *Runtime) run(ctx context.Context, st *state.State, c call, now uint64) (*draw.Response, error) {
	if err := c.funds.Validate(); err != nil {
		return nil, reverts.InvalidParameter("funds", err.Error())
	}
	cp := st.NewCheckpoint()
	contract := draw.New(st, rt.facility, draw.Env{Pool: c.pool, Time: now})
	resp, err := c.handle(contract, st)
	if err != nil {
		st.RevertTo(cp)
		return nil, err
	}
	return resp, nil
}

// commit prepares the facility changeset and applies it together with the state.
func (rt *Runtime) commit(ctx context.Context, st *state.State, c call, seq uint64, resp *draw.Response, rcpt *Receipt) error {
	envs := make([]facility.Envelope, 0, len(resp.Messages)+1)
	if len(c.funds) > 0 {
		envs = append(envs, facility.Envelope{
			From: c.sender.String(),
			Msg:  facility.BankSend{To: c.pool.String(), Amount: c.funds},
		})
	}
	for _, m := range resp.Messages {
		envs = append(envs, facility.Envelope{From: c.pool.String(), Msg: m})
	}
	messages, err := json.Marshal(envs)
	if err != nil {
		return errors.Wrap(err, "encode messages")
	}
	if err := store.NewCounter(store.NewContext(st, namespace), "seq").Set(seq); err != nil {
		return err
	}

	cs, err := rt.facility.Prepare(ctx, envs)
	if err != nil {
		return reverts.FacilityRejected(err)
	}
	if rt.ledger != nil {
		err = rt.commitWithLedger(st, cs, seq)
	} else {
		err = rt.commitState(st, cs, seq)
	}
	if err != nil {
		return err
	}

	rcpt.Success = true
	rcpt.Messages = messages
	if resp.Attributes != nil {
		rcpt.Attributes = resp.Attributes
	}
	return nil
}

// commitState writes the state and then commits the changeset. If the
// changeset fails at commit the state write is undone.
func (rt *Runtime) commitState(st *state.State, cs facility.Changeset, seq uint64) error {
	stage := st.Stage()
	inverse, err := stage.Inverse(rt.db)
	if err != nil {
		cs.Discard()
		return err
	}
	if err := stage.Commit(rt.db.Bulk()); err != nil {
		cs.Discard()
		return err
	}
	if err := cs.Commit(); err != nil {
		if rerr := inverse.Commit(rt.db.Bulk()); rerr != nil {
			logger.Error("failed to undo state after facility commit failure", "seq", seq, "err", rerr)
		}
		return reverts.FacilityRejected(err)
	}
	return nil
}

// commitWithLedger commits the changeset first and then writes the state along
// with the resulting ledger snapshot in one batch. If that write fails the
// ledger is put back to the snapshot last written.
func (rt *Runtime) commitWithLedger(st *state.State, cs facility.Changeset, seq uint64) error {
	item := ledgerItem(store.NewContext(st, namespace))
	prev, found, err := item.Get()
	if err != nil {
		cs.Discard()
		return err
	}
	if err := cs.Commit(); err != nil {
		return reverts.FacilityRejected(err)
	}

	data, err := rt.ledger.Snapshot()
	if err == nil {
		if err = item.Save(data); err == nil {
			err = st.Stage().Commit(rt.db.Bulk())
		}
	}
	if err != nil {
		if !found {
			logger.Error("ledger ahead of state, no snapshot to restore", "seq", seq, "err", err)
			return err
		}
		if rerr := rt.ledger.Restore(prev); rerr != nil {
			logger.Error("failed to restore ledger after state write failure", "seq", seq, "err", rerr)
		}
		return err
	}
	return nil
}

// reject fills in the revert and persists the consumed sequence number alone.
func (rt *Runtime) reject(seq uint64, rcpt *Receipt, cause *reverts.ErrRevert) error {
	body, err := json.Marshal(cause)
	if err != nil {
		return errors.Wrap(err, "encode revert")
	}
	rcpt.Success = false
	rcpt.Messages = nil
	rcpt.Attributes = []draw.Attribute{}
	rcpt.Error = body

	st := state.New(rt.db)
	if err := store.NewCounter(store.NewContext(st, namespace), "seq").Set(seq); err != nil {
		return err
	}
	if err := st.Stage().Commit(rt.db.Bulk()); err != nil {
		return errors.Wrap(err, "persist sequence")
	}
	logger.Debug("invocation rejected", "seq", seq, "kind", rcpt.Kind, "sender", rcpt.Sender, "err", cause)
	return nil
}

// observe refreshes the pool gauges from the committed state.
func (rt *Runtime) observe(ctx context.Context, pool draw.Address) {
	c := draw.New(state.New(rt.db), rt.facility, draw.Env{Pool: pool, Time: rt.now()})
	if resp, err := c.Query(ctx, &draw.QueryMsg{GetCurrentState: &struct{}{}}); err == nil {
		metricPoolPhase().Set(int64(resp.(*draw.CurrentStateResponse).State))
	}
	if resp, err := c.Query(ctx, &draw.QueryMsg{GetNumberOfTicketsSold: &struct{}{}}); err == nil {
		metricTicketsSold().Set(int64(resp.(*draw.TicketsSoldResponse).TicketsSold))
	}
	if resp, err := c.Query(ctx, &draw.QueryMsg{GetTotalTicketsBurned: &struct{}{}}); err == nil {
		metricTicketsBurned().Set(int64(resp.(*draw.TotalBurnedResponse).TotalBurned))
	}
}
