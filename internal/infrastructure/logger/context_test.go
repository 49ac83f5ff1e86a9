package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	// Should return a no-op logger that does not panic
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("test")
	})
}

func TestWithRequestID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithUserID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithUserID(context.Background(), logger, "user-789")

	assert.NotNil(t, enriched)
	assert.Equal(t, "user-789", GetUserID(ctx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithRequestID_Overrides(t *testing.T) {
	logger := zap.NewNop()

	ctx, _ := WithRequestID(context.Background(), logger, "first-id")
	assert.Equal(t, "first-id", GetRequestID(ctx))

	ctx, _ = WithRequestID(ctx, logger, "second-id")
	assert.Equal(t, "second-id", GetRequestID(ctx))
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	logger := FromContext(ctx)

	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("test")
	})
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	baseLogger := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-123")
	ctx, _ = WithUserID(ctx, baseLogger, "user-789")
	ctx = WithContext(ctx, baseLogger)

	L(ctx).Info("test message", zap.String("extra_field", "extra_value"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"user_id":"user-789"`)
	assert.Contains(t, output, `"extra_field":"extra_value"`)
	assert.Contains(t, output, `"msg":"test message"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	baseLogger := zap.New(core)

	WithLogger(context.Background(), baseLogger).Info("test")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test"`)
	assert.NotContains(t, output, `"request_id":""`)
	assert.NotContains(t, output, `"user_id":""`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background(), logger: nil}

	assert.NotPanics(t, func() {
		cl.Info("test")
	})
}

func TestContextLogger_WithChaining(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop()).
		With(zap.String("field1", "value1")).
		With(zap.String("field2", "value2"))

	assert.NotNil(t, cl)
	assert.NotPanics(t, func() {
		cl.Info("chained test")
	})
}

func TestContextLogger_Zap(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	zapLogger := cl.Zap()

	assert.NotNil(t, zapLogger)
	assert.NotPanics(t, func() {
		zapLogger.Info("test")
	})
}
