package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/infrastructure/config"
	"flightlink-service/internal/interface/browser"
	repo "flightlink-service/internal/interface/repository"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newCSVApp(t *testing.T) *app {
	t.Helper()
	bindings, err := browser.LoadBindings("")
	require.NoError(t, err)

	dir := t.TempDir()
	return &app{
		cfg: &config.Config{
			StoreBackend:  config.BackendCSV,
			LinksFile:     filepath.Join(dir, "links.csv"),
			ListingsFile:  filepath.Join(dir, "listings.csv"),
			PageTimeout:   time.Second,
			CaptureWindow: time.Second,
		},
		log:      logger.NewNop(),
		metrics:  metrics.NewMetrics("test", prometheus.NewRegistry()),
		bindings: bindings,
	}
}

func TestLinkRepositoryIsSharedAcrossPhases(t *testing.T) {
	ctx := context.Background()
	a := newCSVApp(t)

	links, err := a.linkRepository(ctx, true)
	require.NoError(t, err)
	require.NoError(t, links.Append(ctx, &entity.CapturedLink{Status: entity.LinkFailed, Reason: entity.ReasonCaptureFallback}))

	again, err := a.linkRepository(ctx, false)
	require.NoError(t, err)
	require.Same(t, links, again)

	// second phase of run on the same app
	summary, err := runScrape(ctx, a, true)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Rows)

	a.close()

	// the lock is released once the app closes
	reopened, err := repo.NewCSVLinkRepository(a.cfg.LinksFile, false)
	require.NoError(t, err)
	defer reopened.Close()
	listed, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, int64(0), listed[0].ID)
}
