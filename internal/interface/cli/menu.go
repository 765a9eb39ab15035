package cli

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/xiebiao/livraria/internal/application/catalog"
	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/pkg/logger"
)

// menuAction is one numbered entry of the interactive menu.
type menuAction struct {
	label string
	run   func(a *App, ctx context.Context) error
}

var menuActions = []menuAction{
	{"Add a new book", (*App).menuAdd},
	{"List all books", (*App).menuList},
	{"Update a book's price", (*App).menuUpdatePrice},
	{"Remove a book", (*App).menuRemove},
	{"Search books by author", (*App).menuSearch},
	{"Export catalog to CSV", (*App).menuExport},
	{"Import books from CSV", (*App).menuImport},
	{"Back up the database", (*App).menuBackup},
}

const rule = "=================================================="

// runMenu loops over the main menu until "9", end of input or Ctrl+C.
// Errors of a single action are shown and the loop continues.
func (a *App) runMenu(ctx context.Context) error {
	a.println(rule)
	a.println("    BOOKSTORE CATALOG")
	a.println(rule)
	a.println("Every change is saved immediately and backed up first.")

	quit := strconv.Itoa(len(menuActions) + 1)
	for {
		a.println()
		a.println("MAIN MENU")
		for i, action := range menuActions {
			a.printf("%d. %s\n", i+1, action.label)
		}
		a.printf("%s. Quit\n", quit)

		choice, err := a.prompt.Line(ctx, "Choose an option (1-"+quit+"): ")
		if err != nil {
			return a.leaveMenu(err)
		}
		choice = strings.TrimSpace(choice)
		if choice == quit {
			a.println("Goodbye!")
			return nil
		}

		n, convErr := strconv.Atoi(choice)
		if convErr != nil || n < 1 || n > len(menuActions) {
			a.printf("Invalid option. Choose a number from 1 to %s.\n", quit)
			continue
		}

		action := menuActions[n-1]
		a.printf("\n=== %s ===\n", strings.ToUpper(action.label))
		if err := action.run(a, ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return a.leaveMenu(err)
			}
			logger.FromContext(ctx).Debug().Err(err).Str("action", action.label).Msg("menu action failed")
			a.printf("Error: %s\n", Describe(err))
		}
		if err := a.pause(ctx); err != nil {
			return a.leaveMenu(err)
		}
	}
}

// leaveMenu ends the session on end of input or interruption.
func (a *App) leaveMenu(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		a.println()
		a.println("Goodbye!")
		return nil
	}
	return err
}

// pause waits for Enter so the output can be read; skipped when not on a terminal.
func (a *App) pause(ctx context.Context) error {
	if !a.interactive {
		return nil
	}
	_, err := a.prompt.Line(ctx, "\nPress Enter to continue...")
	return err
}

func (a *App) menuAdd(ctx context.Context) error {
	var req catalog.AddBookRequest

	// each answer is checked as soon as it is typed
	fields := []struct {
		label    string
		dst      *string
		validate func(string) error
	}{
		{"Title: ", &req.Title, func(s string) error { _, err := book.ValidateTitle(s); return err }},
		{"Author: ", &req.Author, func(s string) error { _, err := book.ValidateAuthor(s); return err }},
		{"Publication year: ", &req.Year, func(s string) error { _, err := book.ValidateYear(s); return err }},
		{"Price (" + a.cfg.Display.CurrencySymbol + "): ", &req.Price, func(s string) error { _, err := book.ValidatePrice(s); return err }},
	}

	for _, f := range fields {
		answer, err := a.prompt.Line(ctx, f.label)
		if err != nil {
			return err
		}
		if err := f.validate(answer); err != nil {
			return err
		}
		*f.dst = answer
	}

	res, err := a.catalog().AddBook(ctx, req)
	if err != nil {
		return err
	}
	a.reportBackup(res.Backup)
	a.printf("Book added. ID: %d\n", res.Book.ID)
	a.describeBook(res.Book)
	return nil
}

func (a *App) menuList(ctx context.Context) error {
	books, err := a.catalog().ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		a.println("No books in the catalog.")
		return nil
	}
	a.printf("Total books: %d\n", len(books))
	return a.renderBooks(a.out, books, FormatTable)
}

func (a *App) menuUpdatePrice(ctx context.Context) error {
	b, err := a.askBook(ctx, "Book ID: ")
	if err != nil || b == nil {
		return err
	}

	a.println("Book found:")
	a.describeBook(b)
	price, err := a.prompt.Line(ctx, "New price ("+a.cfg.Display.CurrencySymbol+"): ")
	if err != nil {
		return err
	}
	return a.updatePrice(ctx, b.ID, price)
}

func (a *App) menuRemove(ctx context.Context) error {
	b, err := a.askBook(ctx, "ID of the book to remove: ")
	if err != nil || b == nil {
		return err
	}
	return a.removeBook(ctx, b.ID, false)
}

func (a *App) menuSearch(ctx context.Context) error {
	author, err := a.prompt.Line(ctx, "Author name (partial match): ")
	if err != nil {
		return err
	}
	books, err := a.catalog().SearchByAuthor(ctx, author)
	if err != nil {
		return err
	}
	author = strings.TrimSpace(author)
	if len(books) == 0 {
		a.printf("No books found for author '%s'.\n", author)
		return nil
	}
	a.printf("Books found for '%s': %d\n", author, len(books))
	return a.renderBooks(a.out, books, FormatTable)
}

func (a *App) menuExport(ctx context.Context) error {
	books, err := a.catalog().ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		a.println("No books in the catalog to export.")
		return nil
	}

	name, err := a.prompt.Line(ctx, "CSV file name (Enter for "+a.cfg.CSV.DefaultFile+"): ")
	if err != nil {
		return err
	}
	return a.exportCSV(ctx, name)
}

func (a *App) menuImport(ctx context.Context) error {
	names, err := a.catalog().ListExports(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.println("No CSV files found in the exports directory.")
		return nil
	}

	a.println("Available CSV files:")
	for i, name := range names {
		a.printf("  %d. %s\n", i+1, name)
	}

	choice, err := a.prompt.Line(ctx, "CSV file name or number: ")
	if err != nil {
		return err
	}
	choice = strings.TrimSpace(choice)
	if n, convErr := strconv.Atoi(choice); convErr == nil {
		if n < 1 || n > len(names) {
			a.println("Invalid number.")
			return nil
		}
		choice = names[n-1]
	}
	return a.importCSV(ctx, choice, false)
}

func (a *App) menuBackup(ctx context.Context) error {
	return a.backup(ctx)
}

// askBook reads an id and loads the book; nil without error means "not found"
// and has already been reported.
func (a *App) askBook(ctx context.Context, label string) (*book.Book, error) {
	answer, err := a.prompt.Line(ctx, label)
	if err != nil {
		return nil, err
	}
	id, err := parseID(answer)
	if err != nil {
		return nil, err
	}

	b, found, err := a.catalog().GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		a.printf("Book with ID %d not found.\n", id)
		return nil, nil
	}
	return b, nil
}
