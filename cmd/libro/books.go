// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/apperr"
)

// parseID reads a positive numeric id argument.
func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationError(fmt.Sprintf("Invalid %s id %q", what, raw))
	}
	return id, nil
}

func (cli *app) booksCommand() *cobra.Command {
	var filter catalog.Filter

	command := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _, err := cli.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			books, err := cli.books.List(ctx, filter)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books match")
				return nil
			}

			table := newTable(cmd.OutOrStdout())
			table.row("ID", "TITLE", "AUTHOR", "CATEGORY", "COPIES", "STATUS")
			for _, book := range books {
				table.row(book.ID, book.Title, book.Author, book.Category, book.NumberOfCopies, book.ActionLabel())
			}
			return table.flush()
		},
	}

	command.Flags().StringVar(&filter.Search, "search", "", "match title or author")
	command.Flags().StringVar(&filter.Category, "category", catalog.AllCategories, "restrict to one category")
	return command
}

func (cli *app) quoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <start-date> <end-date>",
		Short: "Price a borrow period (dates as YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := borrow.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := borrow.ParseDate(args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), borrow.QuoteFor(start, end))
			return nil
		},
	}
}

func (cli *app) borrowCommand() *cobra.Command {
	var from, to, proofPath string

	command := &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Request a borrow with an ID proof image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := cli.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}

			draft := borrow.Draft{BookID: bookID}
			if draft.StartDate, err = borrow.ParseDate(from); err != nil {
				return err
			}
			if draft.EndDate, err = borrow.ParseDate(to); err != nil {
				return err
			}
			if proofPath != "" {
				data, err := os.ReadFile(proofPath)
				if err != nil {
					return fmt.Errorf("read ID proof: %w", err)
				}
				draft.IDProof = &borrow.IDProof{Name: filepath.Base(proofPath), Data: data}
			}

			record, err := cli.borrows.Submit(ctx, borrow.NewAttempt(draft))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Borrow request #%d sent for %q (%s)\n", record.ID, record.Title(), record.Status)
			fmt.Fprintln(out, borrow.QuoteFor(draft.StartDate, draft.EndDate))
			return nil
		},
	}

	today := borrow.Today(time.Now()).Format(borrow.DateLayout)
	command.Flags().StringVar(&from, "from", today, "first day of the borrow (YYYY-MM-DD)")
	command.Flags().StringVar(&to, "to", "", "last day of the borrow (YYYY-MM-DD)")
	command.Flags().StringVar(&proofPath, "id-proof", "", "path to an image of your ID card")
	return command
}

func (cli *app) returnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := cli.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}

			view, err := cli.borrows.OwnView(ctx)
			if err != nil {
				return err
			}
			if err := cli.borrows.ReturnOwn(ctx, view, bookID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Book %d returned\n", bookID)
			return nil
		},
	}
}

func (cli *app) borrowedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed",
		Short: "List your borrows and when they are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _, err := cli.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			entries, err := cli.borrows.ListOwn(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing borrowed")
				return nil
			}

			printEntries(cmd, entries, false)
			return nil
		},
	}
}

// printEntries renders borrows; withReader adds the borrower columns.
func printEntries(cmd *cobra.Command, entries []borrow.Entry, withReader bool) {
	table := newTable(cmd.OutOrStdout())
	if withReader {
		table.row("ID", "READER", "BOOK", "DUE", "STATUS", "PRICE")
	} else {
		table.row("ID", "BOOK", "DUE", "STATUS", "PRICE")
	}

	for _, entry := range entries {
		due := entry.DueDate.Format(borrow.DateLayout) + " (" + dueText(entry) + ")"
		price := "$" + entry.Price.StringFixed(2)
		if withReader {
			table.row(entry.ID, entry.UserName, entry.Title(), due, entry.Status, price)
		} else {
			table.row(entry.ID, entry.Title(), due, entry.Status, price)
		}
	}
	_ = table.flush()
}

func dueText(entry borrow.Entry) string {
	switch entry.DueStatus {
	case borrow.Overdue:
		return fmt.Sprintf("overdue by %d day(s)", -entry.DaysUntilDue)
	case borrow.DueSoon:
		return fmt.Sprintf("due in %d day(s)", entry.DaysUntilDue)
	default:
		return "on time"
	}
}
