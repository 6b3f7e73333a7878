package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"academia/internal/activity"
	"academia/internal/config"
	"academia/internal/directory"
	"academia/internal/logging"
	"academia/internal/store"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	cli := &commandLine{
		migrate: func(command string, args ...string) error {
			return store.Migrate(db.Client, command, args...)
		},
		admins:  directory.NewRepository(db.Client),
		sweeper: activity.NewSweeper(activity.NewRepository(db.Client), log),
		out:     os.Stdout,
	}
	return cli.run(context.Background(), os.Args)
}
