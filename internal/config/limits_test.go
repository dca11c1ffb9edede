package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTradingLimits(t *testing.T) {
	limits := DefaultTradingLimits()

	assert.Equal(t, 0.001, limits.MinQuantity)
	assert.Equal(t, float64(10_000_000), limits.MaxQuantity)
	assert.Equal(t, 0.01, limits.MinPrice)
	assert.Equal(t, float64(1_000_000_000), limits.MaxPrice)
	assert.Equal(t, 100.0, limits.MinNotional)
	assert.Equal(t, 0.1, limits.MinCallbackRate)
	assert.Equal(t, 10.0, limits.MaxCallbackRate)
}

func TestLoadTradingLimitsEmptyPath(t *testing.T) {
	limits, err := LoadTradingLimits("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTradingLimits(), limits)
}

func TestLoadTradingLimitsPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	data := "min_quantity: 0.01\nmin_notional: 25.0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	limits, err := LoadTradingLimits(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, limits.MinQuantity)
	assert.Equal(t, 25.0, limits.MinNotional)
	// Unset fields keep their defaults.
	assert.Equal(t, float64(10_000_000), limits.MaxQuantity)
	assert.Equal(t, 0.1, limits.MinCallbackRate)
}

func TestLoadTradingLimitsMissingFile(t *testing.T) {
	_, err := LoadTradingLimits(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read trading limits")
}

func TestLoadTradingLimitsBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_quantity: [oops"), 0o644))

	_, err := LoadTradingLimits(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse trading limits")
}
