package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsAreEmitted(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithFields(ctx, map[string]any{"jelly_id": "j-1"})
	logg.Info(ctx, "vote.accepted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "j-1", line["jelly_id"])
	assert.Equal(t, "vote.accepted", line["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNilContextFallsBackToBase(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf, Level: zerolog.WarnLevel})

	logg.Info(nil, "dropped")
	logg.Warn(context.Background(), "kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestErrorCarriesStackAndCause(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Error(context.Background(), "checkout.failed", assert.AnError)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, assert.AnError.Error(), line["error"])
	assert.NotEmpty(t, line["stack"])
}

func TestNopIsSilent(t *testing.T) {
	logg := Nop()
	ctx := logg.WithField(context.Background(), "k", "v")
	logg.Error(ctx, "ignored", nil)
}
