package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold above which a statement is logged at warn.
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger writes GORM output through the global zap logger. Statements
// run inside a request or a consumed message carry its id.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	// missing rows are reported through ErrNotFound sentinels already
	logNotFound bool
}

// GormLevel maps the database.log_level setting. "debug" and "info" both
// log every statement.
func GormLevel(name string) gormlogger.LogLevel {
	switch name {
	case "debug", "info":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

func NewGormLogger(level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{level: level, slowThreshold: DefaultSlowQuery}
}

// WithSlowThreshold returns a copy; zero disables slow statement reports.
func (l *GormLogger) WithSlowThreshold(d time.Duration) *GormLogger {
	cp := *l
	cp.slowThreshold = d
	return &cp
}

// WithNotFound makes record-not-found errors loggable again.
func (l *GormLogger) WithNotFound() *GormLogger {
	cp := *l
	cp.logNotFound = true
	return &cp
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		Ctx(ctx).Info(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		Ctx(ctx).Warn(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		Ctx(ctx).Error(fmt.Sprintf(msg, args...), zap.String("component", "gorm"))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.logNotFound {
			return
		}
		Ctx(ctx).Error("SQL statement failed", append(l.statement(fc, elapsed), zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		Ctx(ctx).Warn("Slow SQL statement", append(l.statement(fc, elapsed), zap.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		Ctx(ctx).Debug("SQL statement", l.statement(fc, elapsed)...)
	}
}

func (l *GormLogger) statement(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()
	return []zap.Field{
		zap.String("component", "gorm"),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
