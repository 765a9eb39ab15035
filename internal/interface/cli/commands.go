package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiebiao/livraria/internal/application/catalog"
	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// registerCommands wires every subcommand to the root.
func (a *App) registerCommands(root *cobra.Command) {
	// catalog
	root.AddCommand(a.newMenuCommand())
	root.AddCommand(a.newAddCommand())
	root.AddCommand(a.newListCommand())
	root.AddCommand(a.newSearchCommand())
	root.AddCommand(a.newPriceCommand())
	root.AddCommand(a.newRemoveCommand())
	root.AddCommand(a.newSeedCommand())

	// files
	root.AddCommand(a.newExportCommand())
	root.AddCommand(a.newImportCommand())
	root.AddCommand(a.newBackupCommand())
}

func (a *App) newMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "menu",
		GroupID: "catalog",
		Short:   "Open the interactive menu",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
	}
}

func (a *App) newAddCommand() *cobra.Command {
	var req catalog.AddBookRequest
	cmd := &cobra.Command{
		Use:     "add",
		GroupID: "catalog",
		Short:   "Add a book",
		Example: `  livraria add --title "Dom Casmurro" --author "Machado de Assis" --year 1899 --price 29,90`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.catalog().AddBook(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.reportBackup(res.Backup)
			a.printf("Book added. ID: %d\n", res.Book.ID)
			a.describeBook(res.Book)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "book title (max 200 characters)")
	cmd.Flags().StringVar(&req.Author, "author", "", "author (max 100 characters)")
	cmd.Flags().StringVar(&req.Year, "year", "", "publication year")
	cmd.Flags().StringVar(&req.Price, "price", "", "price, with . or , as decimal separator")
	return cmd
}

func (a *App) newListCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "catalog",
		Short:   "List every book, ordered by title",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			books, err := a.catalog().ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderBooks(a.out, books, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	return cmd
}

func (a *App) newSearchCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "search <author>",
		GroupID: "catalog",
		Short:   "Find books by part of the author's name",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			books, err := a.catalog().SearchByAuthor(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.renderBooks(a.out, books, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	return cmd
}

func (a *App) newPriceCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "price <id> <new-price>",
		GroupID: "catalog",
		Short:   "Change the price of a book",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.updatePrice(cmd.Context(), id, args[1])
		},
	}
}

func (a *App) newRemoveCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		GroupID: "catalog",
		Short:   "Remove a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.removeBook(cmd.Context(), id, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "seed",
		GroupID: "catalog",
		Short:   "Insert a demonstration catalog of classic Brazilian novels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.catalog().Seed(cmd.Context())
			if err != nil {
				return err
			}
			a.reportBackup(report.Backup)
			a.reportImport(report)
			return nil
		},
	}
}

func (a *App) newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "export [file]",
		GroupID: "files",
		Short:   "Export the catalog to a CSV file in the exports directory",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.exportCSV(cmd.Context(), name)
		},
	}
}

func (a *App) newImportCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "import <file>",
		GroupID: "files",
		Short:   "Import books from a CSV file in the exports directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importCSV(cmd.Context(), args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		GroupID: "files",
		Short:   "Back up the catalog database",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.backup(cmd.Context())
		},
	}

	var output string
	list := &cobra.Command{
		Use:   "list",
		Short: "List existing backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			backups, err := a.catalog().ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderBackups(a.out, backups, format)
		},
	}
	list.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	cmd.AddCommand(list)
	return cmd
}

// =========================================
// Shared actions (commands and menu)
// =========================================

func (a *App) updatePrice(ctx context.Context, id int64, rawPrice string) error {
	res, err := a.catalog().UpdatePrice(ctx, id, rawPrice)
	if err != nil {
		return err
	}
	a.reportBackup(res.Backup)
	a.println("Price updated.")
	a.printf("  Previous price: %s\n", a.money.Format(res.OldPrice))
	a.printf("  New price: %s\n", a.money.Format(res.Book.Price))
	return nil
}

func (a *App) removeBook(ctx context.Context, id int64, yes bool) error {
	var confirm catalog.ConfirmFunc
	if !yes {
		// unanswered (end of input, Ctrl+C) counts as no
		confirm = func(b *book.Book) bool {
			a.println("Book to remove:")
			a.describeBook(b)
			ok, err := a.prompt.Confirm(ctx, "Remove this book?")
			return err == nil && ok
		}
	}

	res, err := a.catalog().RemoveBook(ctx, id, confirm)
	if err != nil {
		return err
	}
	if res.Cancelled {
		a.println("Cancelled.")
		return nil
	}
	a.reportBackup(res.Backup)
	a.printf("Book removed: %s\n", res.Book.Title)
	return nil
}

func (a *App) exportCSV(ctx context.Context, name string) error {
	res, err := a.catalog().ExportCSV(ctx, name)
	if err != nil {
		return err
	}
	a.println("Catalog exported.")
	a.printf("  File: %s\n", res.Path)
	a.printf("  Books exported: %d\n", res.Count)
	return nil
}

func (a *App) importCSV(ctx context.Context, name string, yes bool) error {
	var confirm catalog.ImportConfirmFunc
	if !yes {
		confirm = func(rows []files.Row) bool {
			a.previewRows(rows)
			ok, err := a.prompt.Confirm(ctx, "Import "+strconv.Itoa(len(rows))+" books?")
			return err == nil && ok
		}
	}

	report, err := a.catalog().ImportCSV(ctx, name, confirm)
	if err != nil {
		return err
	}
	if report.Rows == 0 {
		a.printf("No books found in %s.\n", report.File)
		return nil
	}
	if report.Cancelled {
		a.println("Import cancelled.")
		return nil
	}
	a.reportBackup(report.Backup)
	a.reportImport(report)
	return nil
}

func (a *App) backup(ctx context.Context) error {
	path, err := a.catalog().Backup(ctx)
	if err != nil {
		return err
	}
	a.println("Backup created.")
	a.printf("  File: %s\n", filepath.Base(path))
	a.printf("  Location: %s\n", path)
	return nil
}

// previewRows shows the first three parsed rows before an import.
func (a *App) previewRows(rows []files.Row) {
	a.printf("Rows loaded: %d\n", len(rows))
	a.println("Preview:")
	for i, row := range rows {
		if i == 3 {
			a.printf("  ... and %d more\n", len(rows)-3)
			break
		}
		if row.Err != nil {
			a.printf("  %d. line %d: %s\n", i+1, row.Line, Describe(row.Err))
			continue
		}
		a.printf("  %d. %s - %s (%d) - %s\n", i+1, row.Title, row.Author, row.Year, a.money.Format(row.Price))
	}
}

func (a *App) reportImport(report *catalog.ImportReport) {
	a.println("Import finished.")
	a.printf("  Books imported: %d\n", report.Imported)
	if report.Failed == 0 {
		return
	}
	a.printf("  Books with errors: %d\n", report.Failed)
	for _, f := range report.Failures {
		a.printf("    line %d (%s): %s\n", f.Line, f.Title, Describe(f.Err))
	}
}

// reportBackup prints the outcome of the automatic pre-change backup.
func (a *App) reportBackup(b catalog.Backup) {
	if b.Warning != nil {
		a.printf("Warning: %s\n", Describe(b.Warning))
		return
	}
	if b.Path != "" {
		a.printf("Automatic backup created: %s\n", filepath.Base(b.Path))
	}
}

func parseID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, apperrors.Invalid("id", "ID must be a whole number")
	}
	return id, nil
}
