// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// drawpool runs a no-loss lottery pool against a simulated chain and serves it over REST.
package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/coreumfun/draw/api"
	"github.com/coreumfun/draw/api/solo"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "drawpool")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "Drawpool",
		Usage:   "No-loss lottery pool node",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			dbEngineFlag,
			persistFlag,
			soloFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			skipNTPFlag,
			pprofFlag,
			skipLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "inspect",
				Usage:  "show the on-chain position of a deployed pool through an LCD endpoint",
				Flags:  []cli.Flag{lcdURLFlag, delegatorFlag, validatorFlag, denomFlag, ticketDenomFlag},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(os.Stderr, lvl, ctx.Bool(jsonLogsFlag.Name))

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	var dataDir string
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, stopMetrics, err := api.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()
	}

	mainDB, err := openMainDB(ctx.String(dbEngineFlag.Name), dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openLogDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	isSolo := ctx.Bool(soloFlag.Name)
	n, err := newNode(exitSignal, cfg, mainDB, logDB, nodeOptions{
		DataDir: dataDir,
		Solo:    isSolo,
		SkipNTP: ctx.Bool(skipNTPFlag.Name),
	})
	if err != nil {
		return err
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, stopAdmin, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, n.health)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); stopAdmin() }()
	}

	opts := api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       ctx.Uint64(apiBacktraceLimitFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
	}
	if isSolo {
		opts.SoloClock = solo.Clock(n.clock)
	}
	handler, closeAPI, err := api.New(n.rt, logDB, opts)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing API..."); closeAPI() }()

	apiURL, stopAPI, err := startAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(os.Stdout, string(n.rt.Pool()), dataDir, apiURL, n.rt.Seq(), isSolo)
	if metricsURL != "" {
		logger.Info("metrics server started", "url", metricsURL)
	}
	if adminURL != "" {
		logger.Info("admin server started", "url", adminURL)
	}

	return n.run(exitSignal)
}
