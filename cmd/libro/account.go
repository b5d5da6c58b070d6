// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taibuivan/libro/internal/session"
)

// # Prompts

// readPassword reads a secret without echoing it. Piped input is read as a line.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(cmd.InOrStdin())
	}

	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// readLine reads up to a newline without buffering past it, so consecutive
// prompts can share a piped stdin.
func readLine(in io.Reader) (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line.WriteByte(buf[0])
		}
		if err == io.EOF && line.Len() > 0 {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
	}
	return strings.TrimRight(line.String(), "\r"), nil
}

// # Commands

func (cli *app) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			signedIn, err := cli.sessions.Login(cmd.Context(), slotKey, session.LoginInput{Email: args[0], Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", signedIn.DisplayName, signedIn.Role)
			return nil
		},
	}
}

func (cli *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.sessions.Logout(cmd.Context(), slotKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (cli *app) whoamiCommand() *cobra.Command {
	var refresh bool

	command := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := cli.sessions.Restore(cmd.Context(), slotKey)
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}

			if refresh {
				if current, err = cli.sessions.Refresh(cmd.Context(), slotKey); err != nil {
					return err
				}
			}

			profile := current.Profile()
			table := newTable(cmd.OutOrStdout())
			table.row("Name", profile.DisplayName)
			table.row("Email", profile.Email)
			table.row("Role", profile.Role)
			table.row("Verified", profile.EmailVerified)
			if !current.ExpiresAt.IsZero() {
				table.row("Expires", current.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return table.flush()
		},
	}

	command.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the library service")
	return command
}

func (cli *app) registerCommand() *cobra.Command {
	var name string

	command := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword(cmd, "Confirm password: ")
			if err != nil {
				return err
			}

			outcome, err := cli.sessions.Register(cmd.Context(), slotKey, session.RegisterInput{
				Name:            name,
				Email:           args[0],
				Password:        password,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outcome.RequiresVerification {
				fmt.Fprintln(out, outcome.Message)
				fmt.Fprintln(out, "Run `libro verify <code>` with the code from the email.")
				return nil
			}
			fmt.Fprintf(out, "Registered and signed in as %s\n", outcome.Session.DisplayName)
			return nil
		},
	}

	command.Flags().StringVar(&name, "name", "", "full name shown to librarians")
	_ = command.MarkFlagRequired("name")
	return command
}

func (cli *app) verifyCommand() *cobra.Command {
	var resend string

	command := &cobra.Command{
		Use:   "verify [code]",
		Short: "Confirm an account with the emailed code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				message string
				err     error
			)
			switch {
			case resend != "":
				message, err = cli.sessions.ResendVerification(cmd.Context(), resend)
			case len(args) == 1:
				message, err = cli.sessions.VerifyEmail(cmd.Context(), args[0])
			default:
				return errors.New("pass the verification code, or --resend <email>")
			}
			if err != nil {
				return err
			}

			if message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			return nil
		},
	}

	command.Flags().StringVar(&resend, "resend", "", "email a new code to this address")
	return command
}
