package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/config"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	"github.com/xiebiao/livraria/internal/infrastructure/persistence/sqlite"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
	"github.com/xiebiao/livraria/pkg/metrics"
)

type fixture struct {
	catalog *Catalog
	repo    book.Repository
	files   *files.Manager
	metrics *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.App.BaseDir = t.TempDir()

	db, err := sqlite.NewDB(cfg, zerolog.Nop())
	require.NoError(t, err)
	fm, err := files.NewManager(cfg, zerolog.Nop())
	require.NoError(t, err)

	repo := sqlite.NewBookRepository(db)
	rec := metrics.NewRecorder()
	return &fixture{
		catalog: New(repo, fm, rec, zerolog.Nop()),
		repo:    repo,
		files:   fm,
		metrics: rec,
	}
}

// mockFiles is a FileStore whose behaviour is scripted per test.
type mockFiles struct {
	mock.Mock
}

func (m *mockFiles) CreateBackup() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockFiles) ListBackups() ([]files.BackupInfo, error) {
	args := m.Called()
	backups, _ := args.Get(0).([]files.BackupInfo)
	return backups, args.Error(1)
}

func (m *mockFiles) ExportCSV(books []*book.Book, filename string) (string, error) {
	args := m.Called(books, filename)
	return args.String(0), args.Error(1)
}

func (m *mockFiles) ImportCSV(filename string) ([]files.Row, error) {
	args := m.Called(filename)
	rows, _ := args.Get(0).([]files.Row)
	return rows, args.Error(1)
}

func (m *mockFiles) ListExports() ([]string, error) {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func validRequest() AddBookRequest {
	return AddBookRequest{Title: "Dom Casmurro", Author: "Machado de Assis", Year: "1899", Price: "29,90"}
}

func backupCount(t *testing.T, f *fixture) int {
	t.Helper()
	backups, err := f.files.ListBackups()
	require.NoError(t, err)
	return len(backups)
}

func TestCatalog_AddBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.catalog.AddBook(ctx, AddBookRequest{
		Title: "  Dom Casmurro ", Author: "Machado de Assis", Year: "1899", Price: "29,90",
	})
	require.NoError(t, err)
	assert.Positive(t, res.Book.ID)
	assert.NoError(t, res.Backup.Warning)
	assert.FileExists(t, res.Backup.Path)

	got, found, err := f.catalog.GetBook(ctx, res.Book.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Dom Casmurro", got.Title)
	assert.Equal(t, "Machado de Assis", got.Author)
	assert.Equal(t, 1899, got.PublicationYear)
	assert.Equal(t, book.Money(2990), got.Price)

	books, err := f.catalog.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestCatalog_AddBook_ValidationFailsBeforeBackup(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(r *AddBookRequest)
		field string
	}{
		{"blank title", func(r *AddBookRequest) { r.Title = "  " }, "title"},
		{"long author", func(r *AddBookRequest) { r.Author = strings.Repeat("a", 101) }, "author"},
		{"bad year", func(r *AddBookRequest) { r.Year = "abc" }, "year"},
		{"old year", func(r *AddBookRequest) { r.Year = "999" }, "year"},
		{"negative price", func(r *AddBookRequest) { r.Price = "-1" }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tt.mut(&req)

			_, err := f.catalog.AddBook(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetAppError(err).Field)

			books, err := f.catalog.ListBooks(context.Background())
			require.NoError(t, err)
			assert.Empty(t, books)
			assert.Zero(t, backupCount(t, f))
		})
	}
}

func TestCatalog_AddBook_BackupFailureIsOnlyAWarning(t *testing.T) {
	f := newFixture(t)
	fm := new(mockFiles)
	fm.On("CreateBackup").Return("", errors.New("disk full")).Once()
	c := New(f.repo, fm, f.metrics, zerolog.Nop())

	res, err := c.AddBook(context.Background(), validRequest())
	require.NoError(t, err)
	require.Error(t, res.Backup.Warning)
	assert.Empty(t, res.Backup.Path)
	assert.ErrorIs(t, res.Backup.Warning, apperrors.ErrBackupFailed)

	_, found, err := c.GetBook(context.Background(), res.Book.ID)
	require.NoError(t, err)
	assert.True(t, found)
	fm.AssertExpectations(t)

	expected := `
# HELP livraria_backups_total Backups attempted, by outcome.
# TYPE livraria_backups_total counter
livraria_backups_total{result="error"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(),
		strings.NewReader(expected), "livraria_backups_total"))
}

func TestCatalog_UpdatePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.catalog.AddBook(ctx, validRequest())
	require.NoError(t, err)

	t.Run("existing book", func(t *testing.T) {
		res, err := f.catalog.UpdatePrice(ctx, added.Book.ID, "35.00")
		require.NoError(t, err)
		assert.Equal(t, book.Money(2990), res.OldPrice)
		assert.Equal(t, book.Money(3500), res.Book.Price)

		got, _, err := f.catalog.GetBook(ctx, added.Book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.Money(3500), got.Price)
	})

	t.Run("absent book takes no backup", func(t *testing.T) {
		before := backupCount(t, f)

		_, err := f.catalog.UpdatePrice(ctx, 9999, "35.00")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, before, backupCount(t, f))
	})

	t.Run("invalid price leaves the book alone", func(t *testing.T) {
		_, err := f.catalog.UpdatePrice(ctx, added.Book.ID, "abc")
		assert.True(t, apperrors.IsValidation(err))

		got, _, err := f.catalog.GetBook(ctx, added.Book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.Money(3500), got.Price)
	})
}

func TestCatalog_RemoveBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.catalog.AddBook(ctx, validRequest())
	require.NoError(t, err)
	id := added.Book.ID

	t.Run("declined", func(t *testing.T) {
		var shown *book.Book
		res, err := f.catalog.RemoveBook(ctx, id, func(b *book.Book) bool {
			shown = b
			return false
		})
		require.NoError(t, err)
		assert.True(t, res.Cancelled)
		assert.Equal(t, "Dom Casmurro", shown.Title)

		_, found, err := f.catalog.GetBook(ctx, id)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("confirmed", func(t *testing.T) {
		res, err := f.catalog.RemoveBook(ctx, id, func(*book.Book) bool { return true })
		require.NoError(t, err)
		assert.False(t, res.Cancelled)

		_, found, err := f.catalog.GetBook(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("absent", func(t *testing.T) {
		called := false
		_, err := f.catalog.RemoveBook(ctx, id, func(*book.Book) bool {
			called = true
			return true
		})
		assert.True(t, apperrors.IsNotFound(err))
		assert.False(t, called)
	})
}

func TestCatalog_SearchByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Seed(ctx)
	require.NoError(t, err)

	books, err := f.catalog.SearchByAuthor(ctx, "  machado ")
	require.NoError(t, err)
	assert.Len(t, books, 5)
	for i := 1; i < len(books); i++ {
		assert.LessOrEqual(t, books[i-1].Title, books[i].Title)
	}

	books, err = f.catalog.SearchByAuthor(ctx, "Tolstói")
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = f.catalog.SearchByAuthor(ctx, "   ")
	assert.ErrorIs(t, err, book.ErrEmptySearch)
}

func TestCatalog_ExportImportRoundTrip(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	_, err := src.catalog.Seed(ctx)
	require.NoError(t, err)

	exported, err := src.catalog.ExportCSV(ctx, "acervo")
	require.NoError(t, err)
	assert.Equal(t, len(seedBooks), exported.Count)
	assert.Equal(t, "acervo.csv", filepath.Base(exported.Path))

	// import into an empty catalog
	dst := newFixture(t)
	data, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dst.files.ExportsDir(), "acervo.csv"), data, 0o644))

	report, err := dst.catalog.ImportCSV(ctx, "acervo", nil)
	require.NoError(t, err)
	assert.Equal(t, len(seedBooks), report.Imported)
	assert.Zero(t, report.Failed)

	want, err := src.catalog.ListBooks(ctx)
	require.NoError(t, err)
	got, err := dst.catalog.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Author, got[i].Author)
		assert.Equal(t, want[i].PublicationYear, got[i].PublicationYear)
		assert.Equal(t, want[i].Price, got[i].Price)
	}
}

func TestCatalog_ImportCSV_RowFailuresAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	content := "ID,Título,Autor,Ano de Publicação,Preço\n" +
		"1,Iracema,José de Alencar,1865,21.50\n" +
		"2,Helena,Machado de Assis,not_a_year,25.90\n" +
		"3,   ,Sem Título,1900,10.00\n" +
		"4,Futuro,Autor,3000,10.00\n" +
		"5,Til,José de Alencar,1872,21.90\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.files.ExportsDir(), "lote.csv"), []byte(content), 0o644))

	var previewed int
	report, err := f.catalog.ImportCSV(ctx, "lote.csv", func(rows []files.Row) bool {
		previewed = len(rows)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 5, previewed)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 3, report.Failed)
	require.Len(t, report.Failures, 3)
	assert.Equal(t, 3, report.Failures[0].Line)
	assert.NoError(t, report.Backup.Warning)

	books, err := f.catalog.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Iracema", books[0].Title)
	assert.Equal(t, "Til", books[1].Title)
}

func TestCatalog_ImportCSV_StrayQuoteAndRoundedPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	content := "ID,Título,Autor,Ano de Publicação,Preço\n" +
		"1,Iracema,José de Alencar,1865,21.50\n" +
		"2,O \"Alienista\",Machado de Assis,1882,19.90\n" +
		"3,Helena,Machado de Assis,1876,-0.004\n" +
		"4,O Ateneu,Raul Pompéia,1888,23.90\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.files.ExportsDir(), "aspas.csv"), []byte(content), 0o644))

	report, err := f.catalog.ImportCSV(ctx, "aspas.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 4, report.Failures[0].Line)
	assert.Equal(t, "price", apperrors.GetAppError(report.Failures[0].Err).Field)

	books, err := f.catalog.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Iracema", books[0].Title)
	assert.Equal(t, `O "Alienista"`, books[1].Title)
	assert.Equal(t, "O Ateneu", books[2].Title)
}

func TestCatalog_ImportCSV_CancelledAndEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows := []files.Row{{Line: 2, Title: "Senhora", Author: "José de Alencar", Year: 1875, Price: 2490}}
	fm := new(mockFiles)
	fm.On("ImportCSV", "lote.csv").Return(rows, nil)
	fm.On("ImportCSV", "vazio.csv").Return([]files.Row{}, nil)
	c := New(f.repo, fm, f.metrics, zerolog.Nop())

	report, err := c.ImportCSV(ctx, "lote", func([]files.Row) bool { return false })
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Zero(t, report.Imported)

	report, err = c.ImportCSV(ctx, "vazio.csv", nil)
	require.NoError(t, err)
	assert.Zero(t, report.Rows)

	// neither run backed up or wrote anything
	fm.AssertNotCalled(t, "CreateBackup")
	books, err := c.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCatalog_ImportCSV_MissingFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.ImportCSV(context.Background(), "nada.csv", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, backupCount(t, f))
}

func TestCatalog_Backup(t *testing.T) {
	f := newFixture(t)

	path, err := f.catalog.Backup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)

	backups, err := f.catalog.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, path, backups[0].Path)
}

func TestCatalog_Backup_ErrorIsReturned(t *testing.T) {
	f := newFixture(t)
	fm := new(mockFiles)
	fm.On("CreateBackup").Return("", apperrors.ErrFileNotFound)
	c := New(f.repo, fm, f.metrics, zerolog.Nop())

	_, err := c.Backup(context.Background())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalog_Seed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.catalog.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, report.Imported)
	assert.Zero(t, report.Failed)

	books, err := f.catalog.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 15)
	assert.Equal(t, "A Escrava Isaura", books[0].Title)
}

func TestCatalog_ListExports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ExportCSV(ctx, "")
	require.NoError(t, err)

	names, err := f.catalog.ListExports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"livros_exportados.csv"}, names)
}
