package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xiebiao/livraria/internal/infrastructure/config"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// DB opens short-lived GORM sessions on the catalog's SQLite file.
// Design notes:
// 1. No pool is kept: every operation opens a connection and closes it when done,
//    so the file is never held open between menu actions and backups copy a quiet file
// 2. The schema is applied once on construction from the embedded schema.sql
// 3. GORM's SQL log goes through zerolog at debug level
type DB struct {
	path        string
	busyTimeout time.Duration
	log         zerolog.Logger
}

// NewDB prepares the data file and its schema.
func NewDB(cfg *config.Config, log zerolog.Logger) (*DB, error) {
	d := &DB{
		path:        cfg.DataFile(),
		busyTimeout: cfg.Storage.BusyTimeout,
		log:         log.With().Str("component", "sqlite").Logger(),
	}

	// 1. data/ must exist before SQLite can create the file
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "create data directory")
	}

	// 2. idempotent table creation
	err := d.withConn(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec(schemaSQL).Error
	})
	if err != nil {
		return nil, err
	}

	d.log.Debug().Str("file", d.path).Msg("catalog store ready")
	return d, nil
}

// Path returns the SQLite file location.
func (d *DB) Path() string {
	return d.path
}

// dsn builds the go-sqlite3 DSN with busy timeout and foreign key pragmas.
func (d *DB) dsn() string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprintf("%d", d.busyTimeout.Milliseconds()))
	q.Set("_foreign_keys", "on")
	return d.path + "?" + q.Encode()
}

// withConn runs fn on a fresh connection and always closes it afterwards.
func (d *DB) withConn(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	db, err := gorm.Open(sqlite.Open(d.dsn()), &gorm.Config{
		Logger: newGormLogger(d.log),
	})
	if err != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeDatabaseError, err, "open catalog database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeDatabaseError, err, "open catalog database")
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil && err == nil {
			err = apperrors.WrapWithCode(apperrors.ErrCodeDatabaseError, cerr, "close catalog database")
		}
	}()

	return fn(db.WithContext(ctx))
}

// BookModel is the GORM mapping of the books table.
// The domain entity stays free of GORM tags; the repository converts between the two.
type BookModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"not null"`
	Author          string `gorm:"not null"`
	PublicationYear int    `gorm:"not null"`
	Price           int64  `gorm:"not null"` // cents
}

// TableName pins the table name to the embedded schema.
func (BookModel) TableName() string {
	return "books"
}
