package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type orchestratorFixture struct {
	orch     *Orchestrator
	sessions *fakeSessions
	links    *memLinkRepo
	listings *memListingRepo
}

func newOrchestratorFixture(t *testing.T, airports staticAirports) *orchestratorFixture {
	t.Helper()
	log := logger.NewNop()
	f := &orchestratorFixture{
		sessions: &fakeSessions{},
		links:    &memLinkRepo{},
		listings: &memListingRepo{},
	}
	f.orch = NewOrchestrator(
		f.links,
		f.listings,
		airports,
		f.sessions,
		NewInputNormalizer("ATL", "DXB", log),
		NewCalendarNavigator(),
		NewLinkCapture(10*time.Millisecond, []string{"hotel"}, log),
		NewListingExtractor(testSelectors, log),
		rate.NewLimiter(rate.Inf, 1),
		time.Second,
		metrics.NewMetrics("test", prometheus.NewRegistry()),
		log,
	)
	f.orch.now = func() time.Time { return testToday }
	return f
}

func TestSynthesizeLinks(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{codes: []string{"ATL", "DXB", "JFK", "LHR"}})

	ok := newFakeBrowser(originURL)
	ok.surfaces = []string{"https://www.kayak.com/hotels/London", "https://www.kayak.com/flights/JFK-LHR/2025-05-20/2025-05-27"}
	okForm := f.sessions.add(ok)

	fallback := newFakeBrowser(originURL)
	f.sessions.add(fallback)

	lost := newFakeBrowser(originURL)
	lost.loseOnSubmit = true
	f.sessions.add(lost)

	after := newFakeBrowser(originURL)
	after.surfaces = []string{"https://www.kayak.com/flights/ATL-DXB/2025-03-16/2025-03-17"}
	f.sessions.add(after)

	rows := []entity.RawRequest{
		{SourceID: "1", Origin: "jfk", Destination: "lhr", DepartDate: "20-05-2025", ReturnDate: "27-05-2025", Travelers: "1,0,0,0,0,0,0", CabinClass: "2"},
		{SourceID: "2", Origin: "ATL", Destination: "DXB", DepartDate: "20-05-2025", ReturnDate: "27-05-2025", Travelers: "1", CabinClass: "0"},
		{SourceID: "3", Origin: "ATL", Destination: "DXB", DepartDate: "20-05-2025", ReturnDate: "27-05-2025", Travelers: "1", CabinClass: "0"},
		{SourceID: "4", Origin: "zzz", Destination: "DXB", DepartDate: "x", ReturnDate: "y", Travelers: "", CabinClass: ""},
	}

	summary, err := f.orch.SynthesizeLinks(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 4, summary.Rows)
	require.Equal(t, 2, summary.Captured)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Lost)

	require.Len(t, f.links.links, 3)
	first, second, third := f.links.links[0], f.links.links[1], f.links.links[2]

	require.Equal(t, int64(0), first.ID)
	require.Equal(t, entity.LinkCaptured, first.Status)
	require.Equal(t, "https://www.kayak.com/flights/JFK-LHR/2025-05-20/2025-05-27", first.URL)
	require.Equal(t, "JFK-LHR", first.Route)
	require.Equal(t, summary.RunID, first.RunID)

	require.Equal(t, int64(1), second.ID)
	require.Equal(t, entity.LinkFailed, second.Status)
	require.Equal(t, entity.ReasonCaptureFallback, second.Reason)
	require.False(t, second.Usable())

	require.Equal(t, int64(2), third.ID)
	require.Equal(t, "4", third.SourceID)
	require.Equal(t, "ATL-DXB", third.Route)

	require.Equal(t, []string{
		"bootstrap", "origin:JFK", "destination:LHR", "travelers", "cabin:business",
		"calendar", "next", "next", "pick:20-05-2025", "pick:27-05-2025", "submit",
	}, okForm.calls)

	for _, b := range f.sessions.browsers {
		require.True(t, b.closed)
	}
}

func TestSynthesizeLinksContinuesAfterFormErrors(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{err: errors.New("reference file missing")})

	b := newFakeBrowser(originURL)
	b.surfaces = []string{"https://www.kayak.com/flights/QQQ-ZZZ/2025-05-20/2025-05-27"}
	form := f.sessions.add(b)
	form.failOn["travelers"] = errors.New("element not found")
	form.failOn["bootstrap"] = errors.New("language menu missing")

	summary, err := f.orch.SynthesizeLinks(context.Background(), []entity.RawRequest{
		{SourceID: "1", Origin: "qqq", Destination: "zzz", DepartDate: "20-05-2025", ReturnDate: "27-05-2025"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Captured)
	require.Contains(t, form.calls, "submit")
	require.Contains(t, form.calls, "origin:QQQ")
}

func TestSynthesizeLinksUnmatchedSelectorTimesOut(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{})
	f.orch.pageTimeout = 20 * time.Millisecond

	b := newFakeBrowser(originURL)
	b.surfaces = []string{"https://www.kayak.com/flights/ATL-DXB/2025-05-20/2025-05-27"}
	form := f.sessions.add(b)
	form.hangOn["bootstrap"] = true
	form.hangOn["origin:ATL"] = true

	done := make(chan struct{})
	var summary *entity.RunSummary
	var err error
	go func() {
		defer close(done)
		summary, err = f.orch.SynthesizeLinks(context.Background(), []entity.RawRequest{
			{SourceID: "1", Origin: "ATL", Destination: "DXB", DepartDate: "20-05-2025", ReturnDate: "27-05-2025"},
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("form step never timed out")
	}
	require.NoError(t, err)
	require.Equal(t, 1, summary.Captured)
	require.Contains(t, form.calls, "destination:DXB")
	require.Contains(t, form.calls, "submit")
}

func TestSynthesizeLinksSessionOpenFailureIsLost(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{})
	f.sessions.openErr = errors.New("chrome not found")

	summary, err := f.orch.SynthesizeLinks(context.Background(), []entity.RawRequest{{SourceID: "1"}, {SourceID: "2"}})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Lost)
	require.Empty(t, f.links.links)
}

func TestScrapeListings(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{})
	ctx := context.Background()

	good := "https://www.kayak.com/flights/ATL-DXB/2025-05-20/2025-05-27"
	broken := "https://www.kayak.com/flights/JFK-LHR/2025-05-20/2025-05-27"
	require.NoError(t, f.links.Append(ctx, &entity.CapturedLink{URL: broken, Status: entity.LinkCaptured}))
	require.NoError(t, f.links.Append(ctx, &entity.CapturedLink{URL: originURL, Status: entity.LinkFailed}))
	require.NoError(t, f.links.Append(ctx, &entity.CapturedLink{URL: good, Status: entity.LinkCaptured}))

	b := newFakeBrowser("about:blank")
	b.failNav[broken] = true
	b.pages[good] = resultPage
	f.sessions.add(b)

	summary, err := f.orch.ScrapeListings(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Rows)
	require.Equal(t, 1, summary.Lost)
	require.Equal(t, 2, summary.Listings)
	require.Equal(t, 2, summary.SkippedItems)
	require.Equal(t, []string{broken, good}, b.navigated)

	require.Len(t, f.listings.records, 2)
	for _, r := range f.listings.records {
		require.Equal(t, good, r.SearchURL)
	}
	require.True(t, b.closed)
}

func TestScrapeListingsReopensLostSession(t *testing.T) {
	f := newOrchestratorFixture(t, staticAirports{})
	ctx := context.Background()

	first := "https://www.kayak.com/flights/A"
	second := "https://www.kayak.com/flights/B"
	require.NoError(t, f.links.Append(ctx, &entity.CapturedLink{URL: first, Status: entity.LinkCaptured}))
	require.NoError(t, f.links.Append(ctx, &entity.CapturedLink{URL: second, Status: entity.LinkCaptured}))

	dying := newFakeBrowser("about:blank")
	dying.pages[first] = resultPage
	f.sessions.add(dying)

	fresh := newFakeBrowser("about:blank")
	fresh.pages[second] = resultPage
	f.sessions.add(fresh)

	// lose the first session once its page has been read
	f.listings = &memListingRepo{}
	f.orch.listingRepo = listingRepoFunc(func(records []*entity.FlightListingRecord) error {
		dying.disconnect()
		return f.listings.Append(ctx, records)
	})

	summary, err := f.orch.ScrapeListings(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, summary.Listings)
	require.Equal(t, 2, f.sessions.opened)
	require.True(t, dying.closed)
	require.Equal(t, []string{second}, fresh.navigated)
}

type listingRepoFunc func([]*entity.FlightListingRecord) error

func (f listingRepoFunc) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	return f(records)
}

func (f listingRepoFunc) Close() error { return nil }
