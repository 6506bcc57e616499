package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/emalab/pingflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatency(t *testing.T) {
	// Canonical H:MM:SS form
	l, err := models.ParseLatency("1:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, l.Duration())

	l, err = models.ParseLatency("0:05:30")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute+30*time.Second, l.Duration())

	// Hours are unbounded so expiries can span days
	l, err = models.ParseLatency("48:00:00")
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, l.Duration())

	// Go duration literals are accepted too
	l, err = models.ParseLatency("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, l.Duration())

	// Surrounding whitespace is tolerated
	l, err = models.ParseLatency("  2:00:00  ")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, l.Duration())

	_, err = models.ParseLatency("")
	assert.Error(t, err)

	_, err = models.ParseLatency("1:00")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "want H:MM:SS")

	_, err = models.ParseLatency("1:60:00")
	assert.Error(t, err)

	_, err = models.ParseLatency("1:00:60")
	assert.Error(t, err)

	_, err = models.ParseLatency("-5m")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestLatencyString(t *testing.T) {
	assert.Equal(t, "0:00:00", models.Latency(0).String())
	assert.Equal(t, "1:00:00", models.Latency(time.Hour).String())
	assert.Equal(t, "1:30:00", models.Latency(90*time.Minute).String())
	assert.Equal(t, "25:30:15", models.Latency(25*time.Hour+30*time.Minute+15*time.Second).String())
}

func TestLatencyJSON(t *testing.T) {
	// Marshals to the H:MM:SS string form
	data, err := json.Marshal(models.Latency(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"1:30:00"`, string(data))

	// Unmarshals from either the string form or raw seconds
	var l models.Latency
	require.NoError(t, json.Unmarshal([]byte(`"2:30:00"`), &l))
	assert.Equal(t, 2*time.Hour+30*time.Minute, l.Duration())

	require.NoError(t, json.Unmarshal([]byte(`3600`), &l))
	assert.Equal(t, time.Hour, l.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &l))
	assert.Error(t, json.Unmarshal([]byte(`-1`), &l))
	assert.Error(t, json.Unmarshal([]byte(`true`), &l))
}

func TestLatencyValueScan(t *testing.T) {
	// Stored as whole seconds
	value, err := models.Latency(90 * time.Minute).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(5400), value)

	var l models.Latency
	require.NoError(t, l.Scan(int64(3600)))
	assert.Equal(t, time.Hour, l.Duration())

	// Drivers that hand back numerics as text still scan
	require.NoError(t, l.Scan("5400"))
	assert.Equal(t, 90*time.Minute, l.Duration())

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, time.Duration(0), l.Duration())

	assert.Error(t, l.Scan(3.14))
}
