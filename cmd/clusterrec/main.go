// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	modeServe    = "serve"
	modeGenerate = "generate"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("clusterrec exited with error")
		os.Exit(1)
	}
}

func run(args []string) error {
	mode := modeServe
	if len(args) > 0 && (args[0] == modeServe || args[0] == modeGenerate) {
		mode, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("clusterrec "+mode, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unknown argument %q", fs.Arg(0))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("mode", mode).
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("store_path", cfg.Store.Path).
		Msg("Starting clusterrec")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	switch mode {
	case modeGenerate:
		return a.generate(ctx)
	default:
		err := a.serve(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
