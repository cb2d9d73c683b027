package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flightlink-service/internal/domain/entity"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultBindings(t *testing.T) {
	b, err := LoadBindings("")
	require.NoError(t, err)

	require.Equal(t, "https://www.kayak.com/", b.StartURL)
	require.Equal(t, entity.TravelerCounts{1, 0, 0, 0, 0, 0, 0}, b.Travelers.Preset)
	require.Len(t, b.Travelers.Increment, entity.TravelerGroups)
	require.Equal(t, time.Second, b.StepDelay)
	require.Equal(t, 2*time.Second, b.SettleDelay)
	require.Equal(t, 5*time.Second, b.OptionalTimeout)
	require.Equal(t, "div.Fxw9-result-item-container", b.Listings.Item)
}

func TestDaySelector(t *testing.T) {
	b, err := LoadBindings("")
	require.NoError(t, err)

	day := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "//div[contains(@aria-label, 'May 20')]", b.DaySelector(day))
}

func TestCabinSelector(t *testing.T) {
	b, err := LoadBindings("")
	require.NoError(t, err)

	require.Empty(t, b.CabinSelector(entity.Economy))
	require.Contains(t, b.CabinSelector(entity.Business), "Business")
	require.Contains(t, b.CabinSelector(entity.PremiumEconomy), "Premium Economy")
}

func TestLoadBindingsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yml")
	require.NoError(t, os.WriteFile(path, []byte("start_url: \"https://www.kayak.co.uk/\"\nstep_delay: 250ms\n"), 0o644))

	b, err := LoadBindings(path)
	require.NoError(t, err)
	require.Equal(t, "https://www.kayak.co.uk/", b.StartURL)
	require.Equal(t, 250*time.Millisecond, b.StepDelay)
	require.Equal(t, "[aria-label='Next month']", b.Calendar.NextMonth)
}

func TestLoadBindingsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yml")
	require.NoError(t, os.WriteFile(path, []byte("travelers:\n  increment: [\"a\", \"b\"]\n"), 0o644))

	_, err := LoadBindings(path)
	require.ErrorContains(t, err, "increment")

	_, err = LoadBindings(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
