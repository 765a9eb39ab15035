package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Format is an output format for listings.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value; blank selects the table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", apperrors.Invalid("output", fmt.Sprintf("unsupported output format %q (table, json, yaml)", s))
}

// Column widths of the book table; longer values are cut with "...".
const (
	titleWidth  = 30
	authorWidth = 25
)

// MoneyFormatter renders prices in the configured locale, e.g. "R$ 1.234,56".
type MoneyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewMoneyFormatter falls back to Brazilian Portuguese for unknown locales.
func NewMoneyFormatter(locale, symbol string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Format renders m with the currency symbol and locale separators.
func (f *MoneyFormatter) Format(m book.Money) string {
	return f.printer.Sprintf("%s %.2f", f.symbol, m.Float64())
}

// truncate cuts s to limit-1 characters plus "..." when it is longer than limit.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "..."
}

// bookView is the JSON/YAML shape of a book; the price keeps its two decimals.
type bookView struct {
	ID     int64  `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Year   int    `json:"publication_year" yaml:"publication_year"`
	Price  string `json:"price" yaml:"price"`
}

type backupView struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Size     int64  `json:"size_bytes" yaml:"size_bytes"`
	Modified string `json:"modified" yaml:"modified"`
}

// renderBooks writes books in the requested format.
func (a *App) renderBooks(w io.Writer, books []*book.Book, format Format) error {
	switch format {
	case FormatJSON, FormatYAML:
		views := make([]bookView, len(books))
		for i, b := range books {
			views[i] = bookView{ID: b.ID, Title: b.Title, Author: b.Author, Year: b.PublicationYear, Price: b.Price.String()}
		}
		return encode(w, views, format)
	}

	table := tablewriter.NewTable(w)
	table.Header("ID", "Title", "Author", "Year", "Price")
	for _, b := range books {
		if err := table.Append(
			strconv.FormatInt(b.ID, 10),
			truncate(b.Title, titleWidth),
			truncate(b.Author, authorWidth),
			strconv.Itoa(b.PublicationYear),
			a.money.Format(b.Price),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// renderBackups writes the backup list, newest first.
func (a *App) renderBackups(w io.Writer, backups []files.BackupInfo, format Format) error {
	switch format {
	case FormatJSON, FormatYAML:
		views := make([]backupView, len(backups))
		for i, b := range backups {
			views[i] = backupView{Name: b.Name, Path: b.Path, Size: b.Size, Modified: b.ModTime.Format("2006-01-02 15:04:05")}
		}
		return encode(w, views, format)
	}

	table := tablewriter.NewTable(w)
	table.Header("Backup", "Size", "Created")
	for _, b := range backups {
		if err := table.Append(b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.ModTime)); err != nil {
			return err
		}
	}
	return table.Render()
}

func encode(w io.Writer, v any, format Format) error {
	if format == FormatYAML {
		data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeBook prints the detail block shown before price changes and removals.
func (a *App) describeBook(b *book.Book) {
	a.printf("  ID: %d\n", b.ID)
	a.printf("  Title: %s\n", b.Title)
	a.printf("  Author: %s\n", b.Author)
	a.printf("  Year: %d\n", b.PublicationYear)
	a.printf("  Price: %s\n", a.money.Format(b.Price))
}

// Describe turns an error into the message shown to the user.
func Describe(err error) string {
	if !apperrors.IsAppError(err) {
		return err.Error()
	}
	appErr := apperrors.GetAppError(err)
	switch {
	case apperrors.IsValidation(appErr):
		return "invalid input: " + appErr.Message
	case appErr.Err != nil && !apperrors.IsAppError(appErr.Err):
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
	case appErr.Err != nil:
		return appErr.Message + ": " + Describe(appErr.Err)
	}
	return appErr.Message
}
