// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command espyctl is the operator CLI: it resolves and reconciles titles
// against the configured store, and issues operator credentials.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "espyctl"))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(log, level).ExecuteContext(ctx); err != nil {
		log.Error("command_failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
