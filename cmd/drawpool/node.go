// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/facility/sim"
	"github.com/coreumfun/draw/health"
	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

const (
	simStateFile  = "sim.state"
	clockInterval = 10 * time.Minute
)

// simState is what a persistent node keeps of the simulated chain outside the
// main database. The ledger itself is written by the runtime with the pool state.
type simState struct {
	ClockOffset uint64 // nanoseconds
}

func loadSimState(path string) (*simState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read sim state")
	}
	var st simState
	if err := rlp.DecodeBytes(data, &st); err != nil {
		return nil, errors.Wrapf(err, "decode sim state [%v]", path)
	}
	return &st, nil
}

// saveSimState replaces the file at path atomically.
func saveSimState(path string, st *simState) error {
	data, err := rlp.EncodeToBytes(st)
	if err != nil {
		return errors.Wrap(err, "encode sim state")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write sim state")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace sim state")
}

// savedClock is a solo clock that writes its offset before every advance.
type savedClock struct {
	*runtime.SoloClock
	mu   sync.Mutex
	path string // empty for an in-memory node
}

func (c *savedClock) Advance(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path != "" && d > 0 {
		if err := saveSimState(c.path, &simState{ClockOffset: uint64(c.Offset() + d)}); err != nil {
			return err
		}
	}
	return c.SoloClock.Advance(d)
}

type nodeOptions struct {
	DataDir string // empty for an in-memory node
	Solo    bool
	SkipNTP bool
}

// node couples the pool runtime with the simulated chain it settles against.
type node struct {
	opts    nodeOptions
	rt      *runtime.Runtime
	chain   *sim.Chain
	clock   *savedClock
	health  *health.Health
	ntpFunc func(string) (*ntp.Response, error)
}

func newNode(ctx context.Context, cfg *config, db kv.Store, logs *logdb.LogDB, opts nodeOptions) (*node, error) {
	clock := &savedClock{SoloClock: runtime.NewSoloClock()}
	var st *simState
	if opts.DataDir != "" {
		clock.path = filepath.Join(opts.DataDir, simStateFile)
		var err error
		if st, err = loadSimState(clock.path); err != nil {
			return nil, err
		}
		if st != nil {
			if err := clock.SoloClock.Advance(time.Duration(st.ClockOffset)); err != nil {
				return nil, err
			}
		}
	}

	// genesis is replaced by the stored ledger when the pool resumes
	chain := sim.New(clock, cfg.simOptions())
	allocs, err := cfg.genesis()
	if err != nil {
		return nil, err
	}
	for _, a := range allocs {
		if err := chain.Fund(a.account, a.coins...); err != nil {
			return nil, errors.WithMessagef(err, "fund %v", a.account)
		}
	}

	rt, err := runtime.New(db, chain, clock, logs, runtime.Options{Ledger: chain})
	if err != nil {
		return nil, err
	}

	h := health.New()
	if opts.Solo {
		h = health.NewSolo()
	}
	n := &node{opts: opts, rt: rt, chain: chain, clock: clock, health: h, ntpFunc: ntp.Query}

	if rt.Pool() == "" {
		msg, err := cfg.instantiateMsg()
		if err != nil {
			return nil, err
		}
		rcpt, err := rt.Instantiate(ctx, draw.Address(cfg.Owner), cfg.Label, msg)
		if err != nil {
			return nil, errors.WithMessage(err, "instantiate pool")
		}
		if !rcpt.Success {
			return nil, errors.Errorf("instantiate pool rejected: %s", rcpt.Error)
		}
		logger.Info("pool instantiated", "pool", rt.Pool(), "owner", cfg.Owner, "denom", msg.BaseDenom)
	} else if st == nil && opts.DataDir != "" {
		logger.Warn("pool resumed without a saved clock offset, solo time restarts from now", "pool", rt.Pool())
	}
	h.PoolReady(rt.Pool())
	h.NewInvocation(rt.Seq())
	return n, nil
}

// run follows invocations until ctx is done.
func (n *node) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		seq := n.rt.Seq()
		for {
			w := n.rt.NewWaiter()
			if cur := n.rt.Seq(); cur != seq {
				seq = cur
				n.health.NewInvocation(seq)
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.C():
			}
		}
	})

	if !n.opts.Solo && !n.opts.SkipNTP {
		g.Go(func() error {
			ticker := time.NewTicker(clockInterval)
			defer ticker.Stop()
			for {
				checkClockOffset(n.health, n.ntpFunc)
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}
