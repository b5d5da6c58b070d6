// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command libro is the terminal client of the Libro library.
//
// It talks to the same backend as the web gateway and keeps its session in a
// 0600 JSON file, so a sign-in survives between invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libro/internal/admin"
	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/config"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/session"
)

// slotKey is the single session slot of the terminal client.
const slotKey = "default"

// app holds the services shared by every command.
type app struct {
	log      *slog.Logger
	sessions *session.Manager
	books    *catalog.Service
	borrows  *borrow.Engine
	staff    *admin.Service
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cli := &app{}

	root := &cobra.Command{
		Use:           constants.CLIName,
		Short:         "Browse and borrow books from the Libro library",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.init()
		},
	}

	root.AddCommand(
		cli.loginCommand(),
		cli.logoutCommand(),
		cli.whoamiCommand(),
		cli.registerCommand(),
		cli.verifyCommand(),
		cli.booksCommand(),
		cli.quoteCommand(),
		cli.borrowCommand(),
		cli.returnCommand(),
		cli.borrowedCommand(),
		cli.adminCommand(),
	)

	return root
}

// init wires the services the way the gateway does, with a file session store.
func (cli *app) init() error {
	cfg, err := config.LoadCLI()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	cli.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.CLIName))

	client := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, cli.log)

	cli.sessions = session.NewManager(session.NewBackendAuthenticator(client), session.NewFileStore(cfg.SessionFile), cli.log)
	client.OnUnauthorized(cli.sessions.HandleUnauthorized)

	cli.books = catalog.NewService(catalog.NewBackendStore(client))
	cli.borrows = borrow.NewEngine(borrow.NewBackendStore(client), cli.books, cli.log)
	cli.staff = admin.NewService(admin.NewBackendStore(client))

	return nil
}

// signedIn restores the stored session and attaches it to ctx.
func (cli *app) signedIn(ctx context.Context) (context.Context, *session.Session, error) {
	current, err := cli.sessions.Restore(ctx, slotKey)
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil, apperr.Unauthorized("Not signed in. Run `libro login` first.")
	}
	if err != nil {
		return nil, nil, err
	}
	return session.WithSession(ctx, slotKey, current), current, nil
}

// staffSignedIn is [app.signedIn] restricted to administrators.
func (cli *app) staffSignedIn(ctx context.Context) (context.Context, error) {
	ctx, current, err := cli.signedIn(ctx)
	if err != nil {
		return nil, err
	}
	if decision := session.ResolveRoute(current, sec.RoleAdmin); !decision.Allow {
		return nil, apperr.Forbidden("This command requires an administrator account")
	}
	return ctx, nil
}

// describe renders err for the terminal. Draft problems are listed one per line.
func describe(err error) string {
	var invalid *borrow.ValidationError
	if errors.As(err, &invalid) {
		message := "the borrow request is incomplete"
		for _, problem := range invalid.Problems {
			message += "\n  - " + problem.Message
		}
		return message
	}
	if appErr := apperr.As(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
