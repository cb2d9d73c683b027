package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CAPTURE_WINDOW_SECONDS", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CAPTURE_REJECT_PATTERNS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, cfg.CaptureWindow)
	require.Equal(t, BackendCSV, cfg.StoreBackend)
	require.Equal(t, []string{"hotel"}, cfg.CaptureRejectPatterns)
	require.Equal(t, "ATL", cfg.DefaultOrigin)
	require.Equal(t, "DXB", cfg.DefaultDestination)
	require.Equal(t, "generated_links.csv", cfg.LinksFile)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CAPTURE_WINDOW_SECONDS", "3")
	t.Setenv("CAPTURE_REJECT_PATTERNS", "hotel, cars")
	t.Setenv("STORE_BACKEND", BackendSQLite)
	t.Setenv("HEADLESS", "true")
	t.Setenv("NAV_RATE_PER_SEC", "2.5")
	t.Setenv("NAV_BURST", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.CaptureWindow)
	require.Equal(t, []string{"hotel", "cars"}, cfg.CaptureRejectPatterns)
	require.Equal(t, BackendSQLite, cfg.StoreBackend)
	require.True(t, cfg.Headless)
	require.Equal(t, 2.5, cfg.NavRatePerSec)
	require.Equal(t, 1, cfg.NavBurst)
}
