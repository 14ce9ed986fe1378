package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("site scored", "site", "sharks_cove")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "site scored", rec["msg"])
	assert.Equal(t, "sharks_cove", rec["site"])
}

func TestNewLoggerTo_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "debug", "text").Debug("fetching", "source", "buoy")
	assert.Contains(t, buf.String(), "source=buoy")
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.SitesScored.Add(3)
	m.SourceErrors.WithLabelValues("buoy").Inc()
	m.CacheLookups.WithLabelValues("tides", "hit").Inc()
	m.DiveableSites.Set(4)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SitesScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceErrors.WithLabelValues("buoy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("tides", "hit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DiveableSites))

	// A second set must not collide with the first.
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
