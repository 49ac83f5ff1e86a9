package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestGormLogger_TraceLogsSlowQuery(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	begin := time.Now().Add(-50 * time.Millisecond)
	gl.Trace(context.Background(), begin, func() (string, int64) {
		return `SELECT * FROM "invoices"`, 3
	}, nil)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "SLOW SQL")
}

func TestGormLogger_TraceLogsError(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `UPDATE "payments" SET status = $1`, 0
	}, errors.New("connection reset"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "SQL Error", entries[0].Message)
}

func TestGormLogger_TraceIgnoresRecordNotFound(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "customers"`, 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, logs.All())
}

func TestGormLogger_TraceIncludesRequestID(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return `SELECT 1`, 1
	}, nil)

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
}

func TestGormLogger_SilentSkipsAll(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT 1`, 1
	}, errors.New("ignored"))

	assert.Empty(t, logs.All())
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
