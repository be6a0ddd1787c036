// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/health"
	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

type testNode struct {
	*node
	db   kv.Engine
	logs *logdb.LogDB
}

func (n *testNode) close() {
	n.db.Close()
	n.logs.Close()
}

func startNode(t *testing.T, cfg *config, opts nodeOptions) *testNode {
	db, err := openMainDB("leveldb", opts.DataDir)
	require.NoError(t, err)
	logs, err := openLogDB(opts.DataDir)
	require.NoError(t, err)
	n, err := newNode(context.Background(), cfg, db, logs, opts)
	require.NoError(t, err)
	return &testNode{node: n, db: db, logs: logs}
}

func buyTicket(t *testing.T, n *node, sender string) *runtime.Receipt {
	rcpt, err := n.rt.Execute(context.Background(), runtime.Invocation{
		Sender: draw.Address(sender),
		Funds:  facility.Coins{facility.NewCoin("ucore", uint256.NewInt(1_000_000))},
		Msg:    &draw.ExecuteMsg{BuyTicket: &draw.BuyTicket{NumberOfTickets: 1}},
	})
	require.NoError(t, err)
	require.True(t, rcpt.Success, string(rcpt.Error))
	return rcpt
}

func ticketsSold(t *testing.T, n *node) uint64 {
	resp, err := n.rt.Query(context.Background(), &draw.QueryMsg{GetNumberOfTicketsSold: &struct{}{}})
	require.NoError(t, err)
	return resp.(*draw.TicketsSoldResponse).TicketsSold
}

func TestNewNodeInstantiates(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sim.Genesis = defaultGenesis()
	n := startNode(t, cfg, nodeOptions{Solo: true})
	defer n.close()

	assert.Equal(t, runtime.PoolAddress("core1owner", "drawpool"), n.rt.Pool())
	st, err := n.health.Status(health.DefaultMaxClockOffset)
	require.NoError(t, err)
	assert.True(t, st.Healthy)
	assert.Equal(t, n.rt.Pool(), st.Pool)

	bal, err := n.chain.Balance(context.Background(), "core1alice", "ucore")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), bal.Uint64())

	// in-memory nodes write no state
	require.NoError(t, n.clock.Advance(time.Hour))
	assert.Equal(t, time.Hour, n.clock.Offset())
}

func TestNodeResumes(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.Sim.Genesis = defaultGenesis()
	opts := nodeOptions{DataDir: dir, Solo: true}

	first := startNode(t, cfg, opts)
	buyTicket(t, first.node, "core1alice")
	require.NoError(t, first.clock.Advance(time.Hour))
	pool, seq := first.rt.Pool(), first.rt.Seq()
	first.close()

	_, err := os.Stat(filepath.Join(dir, simStateFile))
	require.NoError(t, err)

	second := startNode(t, cfg, opts)
	defer second.close()
	assert.Equal(t, pool, second.rt.Pool())
	assert.Equal(t, seq, second.rt.Seq())
	assert.Equal(t, uint64(1), ticketsSold(t, second.node))
	assert.Equal(t, time.Hour, second.clock.Offset())

	bal, err := second.chain.Balance(context.Background(), "core1alice", "ucore")
	require.NoError(t, err)
	assert.Equal(t, uint64(999_000_000), bal.Uint64())

	// the ledger keeps working after the restart
	buyTicket(t, second.node, "core1bob")
	assert.Equal(t, uint64(2), ticketsSold(t, second.node))
}

func TestNodeLedgerSurvivesLostClockState(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.Sim.Genesis = defaultGenesis()
	opts := nodeOptions{DataDir: dir, Solo: true}

	first := startNode(t, cfg, opts)
	buyTicket(t, first.node, "core1alice")
	require.NoError(t, first.clock.Advance(time.Minute))
	first.close()
	require.NoError(t, os.Remove(filepath.Join(dir, simStateFile)))

	// the ledger is stored with the pool state, so balances match the sold tickets
	second := startNode(t, cfg, opts)
	defer second.close()
	assert.Equal(t, uint64(1), ticketsSold(t, second.node))
	assert.Zero(t, second.clock.Offset())
	bal, err := second.chain.Balance(context.Background(), "core1alice", "ucore")
	require.NoError(t, err)
	assert.Equal(t, uint64(999_000_000), bal.Uint64())
}

func TestSavedClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), simStateFile)
	clock := &savedClock{SoloClock: runtime.NewSoloClock(), path: path}

	require.NoError(t, clock.Advance(90*time.Minute))
	require.NoError(t, clock.Advance(30*time.Minute))
	st, err := loadSimState(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*time.Hour), st.ClockOffset)

	// a rejected advance leaves the saved offset alone
	assert.Error(t, clock.Advance(-time.Second))
	st, err = loadSimState(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*time.Hour), st.ClockOffset)
}

func TestNodeRejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, simStateFile), []byte{0xff}, 0o600))

	db, err := openMainDB("leveldb", "")
	require.NoError(t, err)
	defer db.Close()
	logs, err := openLogDB("")
	require.NoError(t, err)
	defer logs.Close()

	_, err = newNode(context.Background(), defaultConfig(), db, logs, nodeOptions{DataDir: dir})
	assert.ErrorContains(t, err, "decode sim state")
}

func TestNodeRun(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.Sim.Genesis = defaultGenesis()
	n := startNode(t, cfg, nodeOptions{DataDir: dir})
	defer n.close()

	n.ntpFunc = func(string) (*ntp.Response, error) { return &ntp.Response{ClockOffset: time.Millisecond}, nil }

	st, _ := n.health.Status(health.DefaultMaxClockOffset)
	assert.False(t, st.Healthy, "clock not checked yet")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.run(ctx) }()

	assert.Eventually(t, func() bool {
		st, _ := n.health.Status(health.DefaultMaxClockOffset)
		return st.Healthy
	}, 5*time.Second, 10*time.Millisecond)

	rcpt := buyTicket(t, n.node, "core1alice")
	assert.Eventually(t, func() bool {
		st, _ := n.health.Status(health.DefaultMaxClockOffset)
		return st.Invocations.Seq == rcpt.Seq
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestLoadSimStateMissing(t *testing.T) {
	st, err := loadSimState(filepath.Join(t.TempDir(), simStateFile))
	assert.NoError(t, err)
	assert.Nil(t, st)
}
