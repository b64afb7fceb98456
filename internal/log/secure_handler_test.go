package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSecureHandler_MasksKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		value string
		mask  bool
	}{
		{"password", "hunter22", true},
		{"Password", "hunter22", true},
		{"new_password", "hunter22", true},
		{"bot_token", "abc", true},
		{"content", "gmail bob Secret123!", true},
		{"label", "Gmail", false},
		{"kind", "credential", false},
		{"user_id", "42", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			jsonLogger(&buf).Info("stored", tt.key, tt.value)
			entry := decode(t, &buf)

			if tt.mask {
				assert.Equal(t, MaskValue, entry[tt.key])
			} else {
				assert.Equal(t, tt.value, entry[tt.key])
			}
		})
	}
}

func TestSecureHandler_MasksValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	jsonLogger(&buf).Info("config",
		"value", "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw",
		"blob", "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODk=",
		"short", "hello",
	)
	entry := decode(t, &buf)

	assert.Equal(t, MaskValue, entry["value"])
	assert.Equal(t, MaskValue, entry["blob"])
	assert.Equal(t, "hello", entry["short"])
}

func TestSecureHandler_ScrubsTokenInErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := errors.New(`Post "https://api.telegram.org/bot123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw/getMe": timeout`)
	jsonLogger(&buf).Error("request failed", "error", err)
	entry := decode(t, &buf)

	msg, ok := entry["error"].(string)
	require.True(t, ok)
	assert.NotContains(t, msg, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw")
	assert.Contains(t, msg, "bot"+MaskValue+"/getMe")
}

func TestSecureHandler_GroupsAndWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := jsonLogger(&buf).With("component", "test", "token", "abc")
	logger.Info("nested", slog.Group("finding", slog.String("label", "Gmail"), slog.String("password", "x")))
	entry := decode(t, &buf)

	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, MaskValue, entry["token"])

	group, ok := entry["finding"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Gmail", group["label"])
	assert.Equal(t, MaskValue, group["password"])
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown", "password", "x")
	entry := decode(t, &buf)
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, MaskValue, entry["password"])

	var text bytes.Buffer
	New(&text, "debug", "text").Debug("console", "secret", "x")
	assert.Contains(t, text.String(), "console")
	assert.NotContains(t, text.String(), "secret=x")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
