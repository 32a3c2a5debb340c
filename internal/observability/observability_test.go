package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("loud"))
}

func TestNewLoggerTo_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "routing", zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("user", "u1").Msg("deposit")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "routing", line["component"])
	assert.Equal(t, "u1", line["user"])
	assert.Equal(t, "deposit", line["message"])
}

func TestMetrics_SetCondition(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetCondition("BAD")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MarketCondition.WithLabelValues("BAD")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MarketCondition.WithLabelValues("GOOD")))

	m.Operations.WithLabelValues("DEPOSIT", "API").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("DEPOSIT", "API")))
}

func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker()
	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	assert.GreaterOrEqual(t, h.Uptime().Nanoseconds(), int64(0))
}
