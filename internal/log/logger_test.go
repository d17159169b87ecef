package log

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "", want: InfoLevel},
		{input: "INFO", want: InfoLevel},
		{input: " debug ", want: DebugLevel},
		{input: "warning", want: WarnLevel},
		{input: "err", want: ErrorLevel},
		{input: "verbose", want: InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimpleLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(WarnLevel, &buf)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown", "k", "v")
	logger.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown k=v")
	assert.Contains(t, out, "[ERROR] also shown")

	logger.SetLevel(DebugLevel)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestSimpleLogger_QuotesMultilineValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(InfoLevel, &buf)
	logger.clock = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger.Info("submitting", "sql", "INSERT INTO t\nSELECT 1", "kind", "INSERT_INTO", "odd")

	line := strings.TrimSpace(buf.String())
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Equal(t, `2024-01-02T03:04:05Z [INFO] submitting sql="INSERT INTO t\nSELECT 1" kind=INSERT_INTO odd=_odd`, line)
}

func TestGlobal(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	SetGlobal(Nop())
	assert.NotPanics(t, func() { Global().Info("discarded", "a", 1) })
	assert.Equal(t, Nop(), Global())
}
