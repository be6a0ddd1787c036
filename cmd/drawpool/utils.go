// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/coreumfun/draw/co"
	"github.com/coreumfun/draw/health"
	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/lvldb"
	"github.com/coreumfun/draw/pebbledb"
)

const (
	ntpServer       = "pool.ntp.org"
	maxRequestBytes = 1 << 20
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".drawpool")
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("value %d is out of range", val)
	}
	return int(val), nil
}

// initLogger installs the root handler and returns its level, adjustable at runtime.
func initLogger(w io.Writer, lvl int, jsonLogs bool) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(w, level)
	} else {
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		}
		handler = log.NewTerminalHandlerWithLevel(w, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return level
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// openMainDB opens the pool state database. An empty dataDir gives an in-memory one.
func openMainDB(engine, dataDir string) (kv.Engine, error) {
	switch engine {
	case "leveldb":
		if dataDir == "" {
			return lvldb.NewMem()
		}
		dir := filepath.Join(dataDir, "main.db")
		db, err := lvldb.New(dir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 256})
		if err != nil {
			return nil, errors.Wrapf(err, "open main database [%v]", dir)
		}
		return db, nil
	case "pebble":
		if dataDir == "" {
			return pebbledb.NewMem()
		}
		dir := filepath.Join(dataDir, "main.pebble")
		db, err := pebbledb.Open(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "open main database [%v]", dir)
		}
		return db, nil
	}
	return nil, errors.Errorf("unknown db engine %q", engine)
}

func openLogDB(dataDir string) (*logdb.LogDB, error) {
	if dataDir == "" {
		return logdb.NewMem()
	}
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		h.ServeHTTP(w, r)
	})
}

func startAPIServer(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// checkClockOffset queries the time server and reports the local clock offset to h.
func checkClockOffset(h *health.Health, query func(string) (*ntp.Response, error)) {
	resp, err := query(ntpServer)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	h.ClockOffset(resp.ClockOffset)
	if resp.ClockOffset.Abs() > health.DefaultMaxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

func printStartupMessage(w io.Writer, pool, dataDir, apiURL string, seq uint64, solo bool) {
	mode := "wall clock"
	if solo {
		mode = "solo"
	}
	if dataDir == "" {
		dataDir = "(memory)"
	}
	fmt.Fprintf(w, `Starting drawpool
    Pool         [ %v ]
    Sequence     [ %v ]
    Clock        [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`, pool, seq, mode, dataDir, apiURL)
}
