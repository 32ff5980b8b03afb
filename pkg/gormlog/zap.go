package gormlog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/fatflowers/checkout/pkg/logctx"
)

// ZapLogger adapts a zap.SugaredLogger to gorm's logger.Interface. Every line
// carries the trace id found on the query context.
type ZapLogger struct {
	base   *zap.SugaredLogger
	config gormlogger.Config
}

func New(base *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{base: base, config: gormlogger.Config{
		SlowThreshold:             300 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	}}
}

func (z *ZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *z
	cp.config.LogLevel = level
	return &cp
}

func (z *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Info {
		logctx.FromCtx(ctx, z.base).Infow(msg, "args", data)
	}
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Warn {
		logctx.FromCtx(ctx, z.base).Warnw(msg, "args", data)
	}
}

func (z *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Error {
		logctx.FromCtx(ctx, z.base).Errorw(msg, "args", data)
	}
}

func (z *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.config.LogLevel == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []interface{}{
		"rows", rows,
		"elapsed_ms", elapsed.Milliseconds(),
		"caller", shortCaller(utils.FileWithLineNum()),
		"sql", sql,
	}
	lg := logctx.FromCtx(ctx, z.base)
	switch {
	case err != nil && !(z.config.IgnoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound)):
		// duplicate keys are an expected outcome of attempt-id retries
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lg.Warnw("gorm duplicate key", append(fields, "err", err)...)
			return
		}
		lg.Errorw("gorm query failed", append(fields, "err", err)...)
	case z.config.SlowThreshold > 0 && elapsed > z.config.SlowThreshold:
		lg.Warnw("gorm slow query", fields...)
	case z.config.LogLevel >= gormlogger.Info:
		lg.Infow("gorm query", fields...)
	}
}

// shortCaller trims an absolute source path to the part under internal/, pkg/
// or cmd/, or to its last three segments.
func shortCaller(s string) string {
	path, line := s, ""
	if i := strings.LastIndex(s, ":"); i >= 0 {
		path, line = s[:i], s[i:]
	}
	path = filepath.ToSlash(path)
	for _, root := range []string{"/internal/", "/pkg/", "/cmd/"} {
		if i := strings.Index(path, root); i >= 0 {
			return path[i+1:] + line
		}
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}
	return strings.Join(parts, "/") + line
}
