package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"

	"github.com/stretchr/testify/require"
)

const originURL = "https://www.kayak.com/"

func newTestCapture(window time.Duration) *LinkCapture {
	return NewLinkCapture(window, []string{"hotel", " "}, logger.NewNop())
}

func noopTrigger(context.Context) error { return nil }

func TestCapturePicksFirstValidCandidate(t *testing.T) {
	b := newFakeBrowser(originURL)
	b.surfaces = []string{
		originURL,
		"https://www.kayak.com/Hotels/Dubai",
		"https://www.kayak.com/flights/ATL-DXB/2025-05-20/2025-05-27",
		"https://www.kayak.com/flights/ATL-DXB/2025-05-20/2025-05-28",
	}

	res, err := newTestCapture(30*time.Millisecond).Capture(context.Background(), b, noopTrigger)
	require.NoError(t, err)
	require.Equal(t, "https://www.kayak.com/flights/ATL-DXB/2025-05-20/2025-05-27", res.URL)
	require.Equal(t, originURL, res.OriginURL)
	require.Equal(t, b.surfaces, res.Candidates)
	require.False(t, res.Fallback)
	require.False(t, res.SelfLink())
	require.Equal(t, CaptureResolved, res.State)
	require.True(t, b.unsubscribed)
}

func TestCaptureFallsBackToCurrentURL(t *testing.T) {
	b := newFakeBrowser(originURL)
	b.surfaces = []string{"https://www.kayak.com/hotels/x", originURL}

	res, err := newTestCapture(20*time.Millisecond).Capture(context.Background(), b, noopTrigger)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.True(t, res.SelfLink())
	require.Equal(t, originURL, res.URL)
}

func TestCaptureFallbackUsesInPlaceNavigation(t *testing.T) {
	b := newFakeBrowser(originURL)
	trigger := func(context.Context) error {
		b.current = "https://www.kayak.com/flights/JFK-LHR/2025-05-20"
		return nil
	}

	res, err := newTestCapture(10*time.Millisecond).Capture(context.Background(), b, trigger)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.False(t, res.SelfLink())
	require.Equal(t, "https://www.kayak.com/flights/JFK-LHR/2025-05-20", res.URL)
}

func TestCaptureTriggerErrorStillCollects(t *testing.T) {
	b := newFakeBrowser(originURL)
	b.surfaces = []string{"https://www.kayak.com/flights/A"}
	trigger := func(context.Context) error { return errors.New("search button not found") }

	res, err := newTestCapture(20*time.Millisecond).Capture(context.Background(), b, trigger)
	require.NoError(t, err)
	require.Equal(t, "https://www.kayak.com/flights/A", res.URL)
}

func TestCaptureDisconnectIsConnectivityFailure(t *testing.T) {
	b := newFakeBrowser(originURL)
	trigger := func(context.Context) error {
		b.disconnect()
		return nil
	}

	started := time.Now()
	res, err := newTestCapture(5*time.Second).Capture(context.Background(), b, trigger)
	require.True(t, errors.Is(err, entity.ErrConnectivity))
	require.Equal(t, CaptureFailed, res.State)
	require.Less(t, time.Since(started), time.Second)
}

func TestCaptureRejectsClosedContext(t *testing.T) {
	b := newFakeBrowser(originURL)
	b.disconnect()

	_, err := newTestCapture(time.Second).Capture(context.Background(), b, noopTrigger)
	require.True(t, errors.Is(err, entity.ErrConnectivity))
}

func TestCaptureSubscribeFailure(t *testing.T) {
	b := newFakeBrowser(originURL)
	b.subscribeErr = errors.New("target domain unavailable")

	res, err := newTestCapture(time.Second).Capture(context.Background(), b, noopTrigger)
	require.True(t, errors.Is(err, entity.ErrUIDriver))
	require.Equal(t, CaptureFailed, res.State)
}

func TestCaptureHonorsContext(t *testing.T) {
	b := newFakeBrowser(originURL)
	ctx, cancel := context.WithCancel(context.Background())
	trigger := func(context.Context) error {
		cancel()
		return nil
	}

	_, err := newTestCapture(5*time.Second).Capture(ctx, b, trigger)
	require.ErrorIs(t, err, context.Canceled)
}
