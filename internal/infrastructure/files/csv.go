package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xiebiao/livraria/internal/domain/book"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Column positions in the header configuration.
const (
	colID = iota
	colTitle
	colAuthor
	colYear
	colPrice
)

// Row is one parsed CSV data row.
// Title and Author are raw; Year is parsed but not range checked; Price is
// range checked before rounding to cents, like manually entered prices.
// Err is set when the row could not be parsed and must not be imported.
type Row struct {
	Line   int
	Title  string
	Author string
	Year   int
	Price  book.Money
	Err    error
}

// ExportCSV writes books to exports/<filename> in the order given and returns the path.
// An existing file is overwritten.
func (m *Manager) ExportCSV(books []*book.Book, filename string) (string, error) {
	name, err := CSVName(filename, m.defaultCSV)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.exportsDir, name)

	if err := m.writeCSV(path, books); err != nil {
		return "", apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "write CSV "+name)
	}

	m.log.Debug().Str("file", path).Int("rows", len(books)).Msg("catalog exported")
	return path, nil
}

func (m *Manager) writeCSV(path string, books []*book.Book) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(m.headers); err != nil {
		return err
	}
	for _, b := range books {
		record := []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			strconv.Itoa(b.PublicationYear),
			b.Price.String(),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ImportCSV reads exports/<filename> into rows, in file order.
// File-level problems (absent file, unreadable content, header without the
// title/author/year/price labels) fail the call; row problems, including
// malformed CSV lines, are reported per row.
// An empty file yields no rows.
func (m *Manager) ImportCSV(filename string) ([]Row, error) {
	name, err := CSVName(filename, "")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(m.exportsDir, name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileNotFound, err, "CSV file not found: "+name)
		}
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "open CSV "+name)
	}
	defer f.Close()

	rows, err := m.readCSV(f)
	if err != nil {
		return nil, err
	}

	m.log.Debug().Str("file", path).Int("rows", len(rows)).Msg("CSV parsed")
	return rows, nil
}

func (m *Manager) readCSV(src io.Reader) ([]Row, error) {
	// UTF-8 with or without a byte order mark
	decoded := transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	// stray quotes inside unquoted fields are kept as text
	r.LazyQuotes = true

	// 1. header → column index
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeInvalidCSV, err, "read CSV header")
	}
	index, err := m.columnIndex(header)
	if err != nil {
		return nil, err
	}

	// 2. data rows
	rows := make([]Row, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rows = append(rows, Row{
				Line: parseErr.StartLine,
				Err:  apperrors.Invalid("row", fmt.Sprintf("malformed CSV line: %v", parseErr.Err)),
			})
			continue
		}
		if err != nil {
			return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "read CSV")
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, m.parseRow(line, record, index))
	}
	return rows, nil
}

// columnIndex locates the title, author, year and price columns by label.
func (m *Manager) columnIndex(header []string) (map[int]int, error) {
	positions := make(map[string]int, len(header))
	for i, label := range header {
		positions[strings.TrimSpace(label)] = i
	}

	index := make(map[int]int, 4)
	for _, col := range []int{colTitle, colAuthor, colYear, colPrice} {
		pos, ok := positions[m.headers[col]]
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidCSV,
				fmt.Sprintf("CSV header is missing column %q", m.headers[col]))
		}
		index[col] = pos
	}
	return index, nil
}

func (m *Manager) parseRow(line int, record []string, index map[int]int) Row {
	row := Row{Line: line}

	field := func(col int) (string, bool) {
		pos := index[col]
		if pos >= len(record) {
			return "", false
		}
		return record[pos], true
	}

	for _, col := range []int{colTitle, colAuthor, colYear, colPrice} {
		if _, ok := field(col); !ok {
			row.Err = apperrors.Invalid("row", fmt.Sprintf("missing value for %q", m.headers[col]))
			return row
		}
	}

	row.Title, _ = field(colTitle)
	row.Author, _ = field(colAuthor)

	rawYear, _ := field(colYear)
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	if err != nil {
		row.Err = apperrors.Invalid("year", fmt.Sprintf("year must be a whole number, got %q", rawYear))
		return row
	}
	row.Year = year

	rawPrice, _ := field(colPrice)
	price, err := book.ValidatePrice(rawPrice)
	if err != nil {
		row.Err = err
		return row
	}
	row.Price = price
	return row
}

// ListExports returns the CSV file names in exports/, sorted.
func (m *Manager) ListExports() ([]string, error) {
	entries, err := os.ReadDir(m.exportsDir)
	if err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "list exports")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
