package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARN":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	Init(Config{Level: "warn", Format: "json", Output: &buf})
	Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	Warn().Str("entity", "teacher").Msg("kept")
	entry := decode(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "teacher", entry["entity"])
	assert.Equal(t, "kept", entry["message"])
}

func TestCtx_AddsIDs(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "01HZ")
	ctx = ContextWithCorrelationID(ctx, "abcd1234")
	Ctx(ctx).Info().Msg("hello")

	entry := decode(t, buf)
	assert.Equal(t, "01HZ", entry["request_id"])
	assert.Equal(t, "abcd1234", entry["correlation_id"])
}

func TestCtx_WithoutIDs(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Info().Msg("plain")

	entry := decode(t, buf)
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "correlation_id")
}

func TestContextLoggerWins(t *testing.T) {
	captureGlobal(t)
	var own bytes.Buffer

	ctx := ContextWithLogger(context.Background(), NewTestLogger(&own))
	Ctx(ctx).Info().Msg("routed")

	assert.Contains(t, own.String(), "routed")
}

func TestCorrelationIDs(t *testing.T) {
	id := GenerateCorrelationID()
	assert.Len(t, id, 8)

	ctx := ContextWithNewCorrelationID(context.Background())
	first := CorrelationIDFromContext(ctx)
	assert.Len(t, first, 8)
	assert.Equal(t, first, CorrelationIDFromContext(ContextWithNewCorrelationID(ctx)))

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })
	SetLogger(NewTestLogger(&buf))

	l := WithComponent("connector")
	l.Error().Msg("x")

	assert.Equal(t, "connector", decode(t, &buf)["component"])
}
