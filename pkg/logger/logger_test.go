package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").With(String("run", "r1"))

	l.Warn("asset failed", String("symbol", "BTC"), Float64("quantity", 1.5), Error(errors.New("boom")))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "warn", got["level"])
	require.Equal(t, "asset failed", got["message"])
	require.Equal(t, "BTC", got["symbol"])
	require.Equal(t, 1.5, got["quantity"])
	require.Equal(t, "boom", got["error"])
	require.Equal(t, "r1", got["run"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	l.Debug("hidden")
	require.Zero(t, buf.Len())

	l.Error("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	Nop().Error("nothing", Int("n", 1))
}
