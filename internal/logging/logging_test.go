package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "path", "/dashboard/captain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "/dashboard/captain", line["path"])

	buf.Reset()
	NewWithWriter(&buf, "debug").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestContextRoundTrip(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{}, "info")
	ctx := IntoContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestNewWithOptions_TextAndService(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(&buf, Options{Level: "info", Format: "text", Service: "sessionctl"})

	l.Info("session cleared", "origin", "barangay.local")
	out := buf.String()
	assert.Contains(t, out, "msg=\"session cleared\"")
	assert.Contains(t, out, "service=sessionctl")
	assert.Contains(t, out, "origin=barangay.local")
}

func TestNewWithOptions_JSONService(t *testing.T) {
	var buf bytes.Buffer
	NewWithOptions(&buf, Options{Service: "barangay-portal"}).Info("up")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "barangay-portal", line["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
