package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturingHandler(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)

	handler := NewCapturingHandler(underlying, recorder, slog.LevelWarn)
	require.NotNil(t, handler)
	assert.Equal(t, slog.LevelWarn, handler.minLevel)
}

func TestCapturingHandler_Enabled(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	handler := NewCapturingHandler(underlying, recorder, slog.LevelWarn)

	ctx := context.Background()

	assert.False(t, handler.Enabled(ctx, slog.LevelDebug))
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn), "captured even though underlying filters it")
	assert.True(t, handler.Enabled(ctx, slog.LevelError))
}

func TestCapturingHandler_Handle_CapturesAboveMinLevel(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelWarn))

	logger.Info("ignored")
	logger.Warn("create activity failed", "activity_id", "a1", "attempt", 2)

	entries := recorder.Entries()
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "create activity failed", entry.Message)
	assert.Equal(t, "a1", entry.Attributes["activity_id"])
	assert.Equal(t, int64(2), entry.Attributes["attempt"]) // Integers are int64
}

func TestCapturingHandler_Handle_PassesThrough(t *testing.T) {
	recorder := NewRecorder(10)
	var buf bytes.Buffer
	underlying := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelError))

	logger.Info("activities loaded", "count", 3)

	output := buf.String()
	assert.Contains(t, output, "activities loaded")
	assert.Contains(t, output, "count")
	assert.Zero(t, recorder.Len())
}

func TestCapturingHandler_Handle_RespectsUnderlyingLevel(t *testing.T) {
	recorder := NewRecorder(10)
	var buf bytes.Buffer
	underlying := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelWarn))

	logger.Warn("captured but not printed")

	assert.Empty(t, buf.String())
	assert.Equal(t, 1, recorder.Len())
}

func TestCapturingHandler_WithAttrs_PreservesCapturing(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	handler := NewCapturingHandler(underlying, recorder, slog.LevelInfo)

	logger := slog.New(handler).With("component", "store")
	logger.Info("test message", "extra", "data")

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0].Attributes["component"])
	assert.Equal(t, "data", entries[0].Attributes["extra"])
}

func TestCapturingHandler_WithAttrs_ReturnsCapturingHandler(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	handler := NewCapturingHandler(underlying, recorder, slog.LevelInfo)

	newHandler := handler.WithAttrs([]slog.Attr{slog.String("key", "value")})

	capturingHandler, ok := newHandler.(*CapturingHandler)
	require.True(t, ok, "WithAttrs should return a *CapturingHandler")
	assert.Equal(t, recorder, capturingHandler.recorder)
	assert.Equal(t, slog.LevelInfo, capturingHandler.minLevel)
}

func TestCapturingHandler_WithGroup_PreservesCapturing(t *testing.T) {
	recorder := NewRecorder(10)
	var buf bytes.Buffer
	underlying := slog.NewJSONHandler(&buf, nil)
	handler := NewCapturingHandler(underlying, recorder, slog.LevelInfo)

	logger := slog.New(handler).WithGroup("request")
	logger.Info("test message", "key", "value")

	newHandler, ok := handler.WithGroup("request").(*CapturingHandler)
	require.True(t, ok, "WithGroup should return a *CapturingHandler")
	assert.Equal(t, []string{"request"}, newHandler.groups)

	require.Equal(t, 1, recorder.Len())
	assert.Contains(t, buf.String(), "request")
}

func TestCapturingHandler_ChainedWithCalls(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)

	logger := WithRecorder(slog.New(underlying), recorder, slog.LevelInfo).
		With("component", "apiclient").
		With("base_url", "http://localhost:5000/api")

	logger.Info("chained message", "extra", "field")

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "apiclient", entries[0].Attributes["component"])
	assert.Equal(t, "http://localhost:5000/api", entries[0].Attributes["base_url"])
	assert.Equal(t, "field", entries[0].Attributes["extra"])
}

func TestCapturingHandler_ConcurrentLogging(t *testing.T) {
	recorder := NewRecorder(1000)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelInfo))

	const numGoroutines = 20
	const logsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				logger.Info("concurrent message", "goroutine", goroutineID, "log", j)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*logsPerGoroutine, recorder.Len())
}

func TestCapturingHandler_StructuredAttributes(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelInfo))

	logger.Info("structured test",
		"string", "value",
		"int", 42,
		"bool", true,
		"float", 3.14,
		"duration", 1500*time.Millisecond,
		"time", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		slog.Group("activity", "id", "a1"),
	)

	entries := recorder.Entries()
	require.Len(t, entries, 1)

	attrs := entries[0].Attributes
	assert.Equal(t, "value", attrs["string"])
	assert.Equal(t, int64(42), attrs["int"])
	assert.Equal(t, true, attrs["bool"])
	assert.InDelta(t, 3.14, attrs["float"], 0.01)
	assert.Equal(t, "1.5s", attrs["duration"])
	assert.NotNil(t, attrs["time"])
	assert.Equal(t, map[string]interface{}{"id": "a1"}, attrs["activity"])
}

func TestCapturingHandler_ErrorAttribute(t *testing.T) {
	recorder := NewRecorder(10)
	underlying := slog.NewJSONHandler(bytes.NewBuffer(nil), nil)
	logger := slog.New(NewCapturingHandler(underlying, recorder, slog.LevelError))

	logger.Error("delete activity failed", "error", fmt.Errorf("request failed: 500"))

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "request failed: 500", entries[0].Attributes["error"])
}
