// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/ftdgo/internal/app"
	"github.com/specialistvlad/ftdgo/internal/cli"
	"github.com/specialistvlad/ftdgo/internal/hcl"
)

// main is the entrypoint for the ftdgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Getenv)
	stop()
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string, getenv func(string) string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW, getenv)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ftdApp, err := app.NewApp(ctx, outW, errW, appConfig, hcl.NewLoader())
	if err != nil {
		return err
	}
	if appConfig.PrintConfig {
		_, err := outW.Write(hcl.Encode(ftdApp.Model()))
		return err
	}
	return ftdApp.Run(ctx)
}
