package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)

	require.True(t, ok)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("logs errors with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, 0)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

		gl.Trace(ctx, time.Now(), sqlFn, errors.New("syntax error"))

		entry := findEntry(recorded.All(), "SQL error")
		require.NotNil(t, entry)
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
	})

	t.Run("skips record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		gl.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		assert.NotNil(t, findEntry(recorded.All(), "Slow SQL"))
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent, 0)

		gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
		assert.Empty(t, recorded.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}
