// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the pool config (yaml), built-in defaults when omitted",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the pool databases",
	}
	dbEngineFlag = cli.StringFlag{
		Name:  "db-engine",
		Value: "leveldb",
		Usage: "state database engine (leveldb|pebble)",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep state in data dir (in-memory otherwise)",
	}
	soloFlag = cli.BoolFlag{
		Name:  "solo",
		Usage: "run on a simulated clock that can be advanced through the API",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'pos' and the latest invocation for subscriptions",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of invocations returned by /logs API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx",
		Usage: "log all requests answered with a 5xx status",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	skipNTPFlag = cli.BoolFlag{
		Name:  "skip-ntp",
		Usage: "skip the NTP clock offset check",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing invocation logs (/logs API will be disabled)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// inspect
	lcdURLFlag = cli.StringFlag{
		Name:  "lcd-url",
		Value: "http://localhost:1317",
		Usage: "LCD REST endpoint of the chain",
	}
	delegatorFlag = cli.StringFlag{
		Name:  "delegator",
		Usage: "pool (delegator) address",
	}
	validatorFlag = cli.StringFlag{
		Name:  "validator",
		Usage: "validator operator address",
	}
	denomFlag = cli.StringFlag{
		Name:  "denom",
		Value: "ucore",
		Usage: "denom of the bank balance",
	}
	ticketDenomFlag = cli.StringFlag{
		Name:  "ticket-denom",
		Usage: "ticket token denom, lists holders when set",
	}
)
