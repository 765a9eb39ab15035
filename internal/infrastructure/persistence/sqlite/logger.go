package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger forwards GORM's log calls to zerolog.
// SQL statements are debug events; failed statements are errors, except
// record-not-found which callers treat as a normal "absent" answer.
type gormLogger struct {
	log   zerolog.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return &gormLogger{log: log, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error().Err(err).
			Str("sql", sql).
			Int64("rows", rows).
			Dur("elapsed", time.Since(begin)).
			Msg("sql failed")
	case l.log.GetLevel() <= zerolog.DebugLevel:
		sql, rows := fc()
		l.log.Debug().
			Str("sql", sql).
			Int64("rows", rows).
			Dur("elapsed", time.Since(begin)).
			Msg("sql")
	}
}
