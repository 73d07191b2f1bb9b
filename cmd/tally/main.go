// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perlin-network/tally"
	"github.com/perlin-network/tally/api"
	"github.com/perlin-network/tally/conf"
	"github.com/perlin-network/tally/log"
	"github.com/perlin-network/tally/store"
	"github.com/perlin-network/tally/sys"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()

	app.Name = "tally"
	app.Author = "Perlin Network"
	app.Email = "support@perlin.net"
	app.Version = sys.Version
	app.Usage = "a historized time-weighted balance ledger"

	app.Flags = []cli.Flag{
		cli.UintFlag{
			Name:  "port, p",
			Value: 9000,
			Usage: "Listen for API requests on port `PORT`.",
		},
		cli.StringFlag{
			Name:  "db",
			Value: "",
			Usage: "Directory path `DB` to the database. An empty path uses an in-memory store.",
		},
		cli.IntFlag{
			Name:  "history-size",
			Value: sys.DefaultHistorySize,
			Usage: "Number of `OBSERVATIONS` each account's history ring retains.",
		},
		cli.Float64Flag{
			Name:  "rps",
			Value: 1000,
			Usage: "Maximum API requests per second `RPS` per client per route.",
		},
		cli.StringFlag{
			Name:  "api.secret",
			Value: "",
			Usage: "Bearer `TOKEN` required by token operation endpoints.",
		},
		cli.DurationFlag{
			Name:  "commit-interval",
			Value: 5 * time.Second,
			Usage: "`INTERVAL` between flushes of dirty ledgers to the database.",
		},
		cli.StringFlag{
			Name:  "loglevel, l",
			Value: "debug",
			Usage: "Minimum log level `LEVEL` to output.",
		},
	}

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("Version:    %s\n", c.App.Version)
		fmt.Printf("Go Version: %s\n", sys.GoVersion)
		fmt.Printf("Git Commit: %s\n", sys.GitCommit)
		fmt.Printf("OS/Arch:    %s\n", sys.OSArch)
		fmt.Printf("Built:      %s\n", c.App.Compiled.Format(time.ANSIC))
	}

	app.Action = func(c *cli.Context) error {
		log.SetWriter(log.LoggerConsole,
			zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		log.SetLevel(c.String("loglevel"))

		conf.Update(
			conf.WithHistorySize(c.Int("history-size")),
			conf.WithAPIRequestsPerSecond(c.Float64("rps")),
			conf.WithSecret(c.String("api.secret")),
		)

		return run(c)
	}

	if err := app.Run(os.Args); err != nil {
		logger := log.Node()
		logger.Fatal().Err(err).
			Msg("Failed to parse configuration/command-line arguments.")
	}
}

func run(c *cli.Context) error {
	logger := log.Node()

	var kv store.KV

	if dir := c.String("db"); len(dir) > 0 {
		leveldb, err := store.NewLevelDB(dir)
		if err != nil {
			return err
		}

		kv = leveldb

		logger.Info().Str("path", dir).Msg("Opened LevelDB database.")
	} else {
		kv = store.NewInmem()

		logger.Warn().Msg("No database path was specified; ledgers will not survive a restart.")
	}

	defer func() {
		_ = kv.Close()
	}()

	registry, err := tally.NewRegistry(kv, conf.GetHistorySize())
	if err != nil {
		return err
	}

	logger.Info().
		Int("num_accounts", registry.NumAccounts()).
		Uint64("supply", registry.TotalSupply()).
		Msg("Loaded balance histories.")

	gateway := api.New(&api.Config{
		Port:              c.Int("port"),
		Registry:          registry,
		RequestsPerSecond: conf.GetAPIRequestsPerSecond(),
	})

	if err := gateway.Start(); err != nil {
		return err
	}

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(c.Duration("commit-interval"))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := registry.Commit(); err != nil {
				logger.Error().Err(err).Msg("Failed to flush ledgers to the database.")
			}
		case <-exit:
			gateway.Shutdown()

			if err := registry.Commit(); err != nil {
				return err
			}

			logger.Info().Msg("Shut down cleanly.")

			return nil
		}
	}
}
