// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libro/internal/admin"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/sec"
)

func (cli *app) adminCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "admin",
		Short: "Librarian commands (administrators only)",
	}

	command.AddCommand(
		cli.adminBorrowsCommand(),
		cli.adminReturnCommand(),
		cli.adminStatsCommand(),
		cli.adminUsersCommand(),
		cli.adminBooksCommand(),
	)
	return command
}

// # Borrows

func (cli *app) adminBorrowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrows",
		Short: "List every borrow with the due summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			overview, err := cli.borrows.ListAll(ctx)
			if err != nil {
				return err
			}

			summary := overview.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "%d borrow(s): %d overdue, %d due soon, %d recent\n\n",
				summary.Total, summary.Overdue, summary.DueSoon, summary.Recent)
			printEntries(cmd, overview.Borrows, true)
			return nil
		},
	}
}

func (cli *app) adminReturnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrow-id>",
		Short: "Mark a borrow as returned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			borrowID, err := parseID(args[0], "borrow")
			if err != nil {
				return err
			}

			if err := cli.borrows.ReturnBorrow(ctx, cli.borrows.AdminView(), borrowID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Borrow %d returned\n", borrowID)
			return nil
		},
	}
}

// # Dashboard

func (cli *app) adminStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			dashboard, err := cli.staff.LoadDashboard(ctx)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout())
			table.row("Users", dashboard.Stats.TotalUsers)
			table.row("Books", dashboard.Stats.TotalBooks)
			table.row("Active borrows", dashboard.Stats.ActiveBorrows)
			table.row("Pending returns", dashboard.Stats.PendingReturns)
			if err := table.flush(); err != nil {
				return err
			}

			if len(dashboard.Activity) == 0 {
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout())
			activity := newTable(cmd.OutOrStdout())
			for _, item := range dashboard.Activity {
				activity.row(item.Time, item.Text(), item.Status)
			}
			return activity.flush()
		},
	}
}

// # Users

func (cli *app) adminUsersCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			users, err := cli.staff.ListUsers(ctx)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout())
			table.row("ID", "NAME", "EMAIL", "ROLE", "JOINED")
			for _, user := range users {
				table.row(user.ID, user.Name, user.Email, user.Role, user.CreatedAt.Format(time.DateOnly))
			}
			return table.flush()
		},
	}

	command.AddCommand(cli.adminAddUserCommand(), cli.adminDeleteUserCommand())
	return command
}

func (cli *app) adminAddUserCommand() *cobra.Command {
	var input admin.CreateUserInput
	var role string

	command := &cobra.Command{
		Use:   "add <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			input.Email = args[0]
			input.Role = sec.ParseRole(role)
			if input.Password, err = readPassword(cmd, "Initial password: "); err != nil {
				return err
			}

			user, err := cli.staff.CreateUser(ctx, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) with id %d\n", user.Email, user.Role, user.ID)
			return nil
		},
	}

	command.Flags().StringVar(&input.Name, "name", "", "full name")
	command.Flags().StringVar(&role, "role", string(sec.RoleUser), "User or Admin")
	_ = command.MarkFlagRequired("name")
	return command
}

func (cli *app) adminDeleteUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if err := cli.staff.DeleteUser(ctx, userID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted\n", userID)
			return nil
		},
	}
}

// # Books

func (cli *app) adminBooksCommand() *cobra.Command {
	var search string

	command := &cobra.Command{
		Use:   "books",
		Short: "List the catalog as librarians see it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			books, err := cli.books.AdminList(ctx, search)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout())
			table.row("ID", "TITLE", "AUTHOR", "YEAR", "CATEGORY", "COPIES", "AVAILABLE")
			for _, book := range books {
				table.row(book.ID, book.Title, book.Author, book.PublishedYear, book.Category, book.NumberOfCopies, book.Available)
			}
			return table.flush()
		},
	}

	command.Flags().StringVar(&search, "search", "", "match title, author or category")
	command.AddCommand(cli.adminAddBookCommand(), cli.adminDeleteBookCommand())
	return command
}

func (cli *app) adminAddBookCommand() *cobra.Command {
	input := catalog.NewBookInput(time.Now())

	command := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			book, err := cli.books.Create(ctx, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %q with id %d\n", book.Title, book.ID)
			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&input.Title, "title", "", "book title")
	flags.StringVar(&input.Author, "author", "", "author name")
	flags.StringVar(&input.Description, "description", "", "short description")
	flags.StringVar(&input.Category, "category", input.Category, "one of the catalog categories")
	flags.IntVar(&input.PublishedYear, "year", input.PublishedYear, "publication year")
	flags.IntVar(&input.NumberOfCopies, "copies", input.NumberOfCopies, "copies on the shelf")
	_ = command.MarkFlagRequired("title")
	_ = command.MarkFlagRequired("author")
	return command
}

func (cli *app) adminDeleteBookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cli.staffSignedIn(cmd.Context())
			if err != nil {
				return err
			}

			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := cli.books.Delete(ctx, bookID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Book %d deleted\n", bookID)
			return nil
		},
	}
}
