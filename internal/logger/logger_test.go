package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	defer func() { os.Stdout = orig }()

	r, w, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")

	os.Stdout = w
	fn()
	require.NoError(t, w.Close(), "failed to close stdout pipe")

	out, err := io.ReadAll(r)
	require.NoError(t, err, "failed to read stdout pipe")

	return string(out)
}

func TestLogger_parseLevel(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			expected slog.Level
		}{
			{"Debug level", "DEBUG", slog.LevelDebug},
			{"Debug level lowercase", "debug", slog.LevelDebug},
			{"Info level", "info", slog.LevelInfo},
			{"Warn level", "warn", slog.LevelWarn},
			{"Error level", "error", slog.LevelError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := parseLevel(tt.input)

				require.NoError(t, err, "parseLevel(%q) should not return an error", tt.input)
				require.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("not valid", func(t *testing.T) {
		for _, value := range []string{"", "unknown"} {
			_, err := parseLevel(value)
			require.Error(t, err, "parseLevel(%q) should fail", value)
		}
	})
}

func TestLogger_New(t *testing.T) {
	t.Run("production logs json", func(t *testing.T) {
		var l Logger
		var err error

		out := capture(t, func() {
			l, err = New(EnvProduction, LevelInfo)
			require.NoError(t, err)
			l.Info("hello", "key", "value")
		})

		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &record), "production output should be json")
		require.Equal(t, "hello", record["msg"])
		require.Equal(t, "value", record["key"])
	})

	t.Run("development logs text", func(t *testing.T) {
		out := capture(t, func() {
			l, err := New(EnvDevelopment, LevelInfo)
			require.NoError(t, err)
			l.Info("hello", "key", "value")
		})

		require.Contains(t, out, "msg=hello")
		require.Contains(t, out, "key=value")
	})

	t.Run("level respected", func(t *testing.T) {
		out := capture(t, func() {
			l, err := New(EnvDevelopment, LevelWarn)
			require.NoError(t, err)
			l.Info("should not appear")
			l.Warn("should appear")
		})

		require.NotContains(t, out, "should not appear")
		require.Contains(t, out, "should appear")
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)
		require.Error(t, err)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New(EnvDevelopment, "verbose")
		require.Error(t, err)
	})
}
