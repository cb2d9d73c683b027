package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Pipeline phases
const (
	PhaseLinks  = "links"
	PhaseScrape = "scrape"
)

// Orchestrator runs the two pipeline phases over a batch: link synthesis,
// then listing scraping of every captured link
type Orchestrator struct {
	linkRepo    repository.LinkRepository
	listingRepo repository.ListingRepository
	airportRepo repository.AirportRepository
	sessions    driver.SessionFactory
	normalizer  *InputNormalizer
	calendar    *CalendarNavigator
	capture     *LinkCapture
	extractor   *ListingExtractor
	limiter     *rate.Limiter
	pageTimeout time.Duration
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	linkRepo repository.LinkRepository,
	listingRepo repository.ListingRepository,
	airportRepo repository.AirportRepository,
	sessions driver.SessionFactory,
	normalizer *InputNormalizer,
	calendar *CalendarNavigator,
	capture *LinkCapture,
	extractor *ListingExtractor,
	limiter *rate.Limiter,
	pageTimeout time.Duration,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		linkRepo:    linkRepo,
		listingRepo: listingRepo,
		airportRepo: airportRepo,
		sessions:    sessions,
		normalizer:  normalizer,
		calendar:    calendar,
		capture:     capture,
		extractor:   extractor,
		limiter:     limiter,
		pageTimeout: pageTimeout,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SynthesizeLinks drives the search form once per row and appends one link
// per row as soon as it is known. A row whose browsing context is lost gets
// no link; the batch always moves on to the next row.
func (o *Orchestrator) SynthesizeLinks(ctx context.Context, rows []entity.RawRequest) (*entity.RunSummary, error) {
	summary := &entity.RunSummary{
		RunID:     uuid.NewString(),
		Phase:     PhaseLinks,
		StartedAt: o.now(),
	}
	log := o.logger.With("run", summary.RunID, "phase", PhaseLinks)
	log.Info("Starting link synthesis", "rows", len(rows))

	known, err := o.airportRepo.LoadCodes(ctx)
	if err != nil {
		log.Warn("Airport reference set unavailable, skipping code validation", "error", err)
		known = nil
	}

	for i, row := range rows {
		if err := o.limiter.Wait(ctx); err != nil {
			return o.finish(summary), err
		}
		summary.Rows++
		o.metrics.RowsProcessed.Inc()
		rowLog := log.With("row", i, "source", row.SourceID)

		link, err := o.synthesizeOne(ctx, summary.RunID, row, known, rowLog)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return o.finish(summary), err
		case errors.Is(err, entity.ErrConnectivity):
			summary.Lost++
			o.metrics.ErrorsCount.WithLabelValues("connectivity").Inc()
			rowLog.Warn("Browsing context lost, row skipped", "error", err)
			continue
		default:
			o.metrics.ErrorsCount.WithLabelValues("store_link").Inc()
			return o.finish(summary), fmt.Errorf("row %d: %w", i, err)
		}

		if link.Status == entity.LinkCaptured {
			summary.Captured++
		} else {
			summary.Failed++
		}
		o.metrics.LinksCaptured.WithLabelValues(string(link.Status)).Inc()
		rowLog.Info("Link appended", "id", link.ID, "status", link.Status, "url", link.URL)
	}

	o.finish(summary)
	log.Info("Link synthesis finished",
		"captured", summary.Captured,
		"failed", summary.Failed,
		"lost", summary.Lost,
		"duration", summary.Duration())
	return summary, nil
}

func (o *Orchestrator) synthesizeOne(ctx context.Context, runID string, row entity.RawRequest, known entity.AirportSet, log logger.Logger) (*entity.CapturedLink, error) {
	startTime := o.now()
	defer func() {
		o.metrics.CaptureTime.Observe(time.Since(startTime).Seconds())
	}()

	today := o.now()
	req, corrections := o.normalizer.Normalize(row, known, today)
	for _, c := range corrections {
		log.Info("Input corrected", "correction", c.String())
	}

	session, err := o.sessions.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open session: %v", entity.ErrConnectivity, err)
	}
	defer func() {
		if err := session.Browser.Close(); err != nil {
			log.Debug("Closing browsing session failed", "error", err)
		}
	}()

	if err := o.fillForm(ctx, session, req, today, log); err != nil {
		return nil, err
	}

	submit := func(ctx context.Context) error {
		stepCtx, cancel := context.WithTimeout(ctx, o.pageTimeout)
		defer cancel()
		return session.Form.SubmitSearch(stepCtx)
	}
	res, err := o.capture.Capture(ctx, session.Browser, submit)
	if res != nil {
		o.metrics.CaptureCandidate.Observe(float64(len(res.Candidates)))
	}

	link := &entity.CapturedLink{
		RunID:     runID,
		SourceID:  req.SourceID,
		Route:     req.Route(),
		CreatedAt: o.now(),
	}
	switch {
	case err == nil && !res.SelfLink():
		link.Status = entity.LinkCaptured
		link.URL = res.URL
		link.OriginURL = res.OriginURL
	case err == nil:
		link.Status = entity.LinkFailed
		link.Reason = entity.ReasonCaptureFallback
		link.URL = res.URL
		link.OriginURL = res.OriginURL
		log.Warn("Capture found no result page", "error", entity.ErrCaptureFallback, "candidates", len(res.Candidates))
	case errors.Is(err, entity.ErrUIDriver):
		link.Status = entity.LinkFailed
		link.Reason = entity.ReasonUIDriver
		if res != nil {
			link.OriginURL = res.OriginURL
		}
		log.Warn("Capture could not start", "error", err)
	default:
		return nil, err
	}

	if err := o.linkRepo.Append(ctx, link); err != nil {
		return nil, fmt.Errorf("append link: %w", err)
	}
	return link, nil
}

// fillForm runs every form step best-effort, each bounded by the page
// timeout. A failed step is logged and skipped unless the browsing context is
// gone.
func (o *Orchestrator) fillForm(ctx context.Context, session *driver.Session, req entity.SearchRequest, today time.Time, log logger.Logger) error {
	form := session.Form
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"bootstrap", form.Bootstrap},
		{"origin", func(ctx context.Context) error { return form.SelectOrigin(ctx, req.Origin) }},
		{"destination", func(ctx context.Context) error { return form.SelectDestination(ctx, req.Destination) }},
		{"travelers", func(ctx context.Context) error { return form.SelectTravelers(ctx, req.Travelers) }},
		{"cabin", func(ctx context.Context) error { return form.SelectCabin(ctx, req.CabinClass) }},
		{"dates", func(ctx context.Context) error {
			plan, err := o.calendar.Plan(today, req.DepartDate, req.ReturnDate)
			if err != nil {
				return err
			}
			return o.calendar.Apply(ctx, form, plan)
		}},
	}

	for _, step := range steps {
		stepCtx, cancel := context.WithTimeout(ctx, o.pageTimeout)
		err := step.run(stepCtx)
		cancel()
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !session.Browser.IsConnected() {
			return fmt.Errorf("%w: during %s: %v", entity.ErrConnectivity, step.name, err)
		}
		o.metrics.ErrorsCount.WithLabelValues("form_" + step.name).Inc()
		log.Warn("Form step failed, continuing", "step", step.name, "error", err)
	}
	return nil
}

// ScrapeListings visits every usable link of the link log and appends the
// listing records found on each page
func (o *Orchestrator) ScrapeListings(ctx context.Context) (*entity.RunSummary, error) {
	summary := &entity.RunSummary{
		RunID:     uuid.NewString(),
		Phase:     PhaseScrape,
		StartedAt: o.now(),
	}
	log := o.logger.With("run", summary.RunID, "phase", PhaseScrape)

	links, err := o.linkRepo.List(ctx)
	if err != nil {
		return o.finish(summary), fmt.Errorf("list links: %w", err)
	}
	log.Info("Starting listing scrape", "links", len(links))

	var session *driver.Session
	defer func() {
		if session != nil {
			session.Browser.Close()
		}
	}()

	for _, link := range links {
		if !link.Usable() {
			continue
		}
		if err := o.limiter.Wait(ctx); err != nil {
			return o.finish(summary), err
		}
		summary.Rows++
		linkLog := log.With("link", link.ID, "url", link.URL)

		if session != nil && !session.Browser.IsConnected() {
			session.Browser.Close()
			session = nil
		}
		if session == nil {
			if session, err = o.sessions.Open(ctx); err != nil {
				summary.Lost++
				o.metrics.ErrorsCount.WithLabelValues("connectivity").Inc()
				linkLog.Warn("Could not open browsing session, link skipped", "error", err)
				session = nil
				continue
			}
		}

		records, report, err := o.scrapeOne(ctx, session.Browser, link.URL)
		if err != nil {
			if ctx.Err() != nil {
				return o.finish(summary), ctx.Err()
			}
			summary.Lost++
			o.metrics.ErrorsCount.WithLabelValues("scrape").Inc()
			linkLog.Warn("Scraping link failed", "error", err)
			continue
		}
		o.metrics.PagesScraped.Inc()
		o.metrics.ItemsSkipped.Add(float64(report.Skipped))
		summary.SkippedItems += report.Skipped

		if len(records) > 0 {
			if err := o.listingRepo.Append(ctx, records); err != nil {
				o.metrics.ErrorsCount.WithLabelValues("store_listing").Inc()
				return o.finish(summary), fmt.Errorf("append listings for link %d: %w", link.ID, err)
			}
		}
		summary.Listings += len(records)
		o.metrics.ListingsStored.Add(float64(len(records)))
		linkLog.Info("Page scraped",
			"items", report.Items,
			"records", report.Records,
			"noPrice", report.NoPrice,
			"skipped", report.Skipped)
	}

	o.finish(summary)
	log.Info("Listing scrape finished",
		"pages", summary.Rows,
		"listings", summary.Listings,
		"skippedItems", summary.SkippedItems,
		"duration", summary.Duration())
	return summary, nil
}

func (o *Orchestrator) scrapeOne(ctx context.Context, browser driver.Browser, url string) ([]*entity.FlightListingRecord, *ExtractionReport, error) {
	pageCtx, cancel := context.WithTimeout(ctx, o.pageTimeout)
	defer cancel()

	if err := browser.Navigate(pageCtx, url); err != nil {
		return nil, nil, fmt.Errorf("%w: navigate: %v", entity.ErrUIDriver, err)
	}
	if err := browser.WaitForLoad(pageCtx); err != nil {
		return nil, nil, fmt.Errorf("%w: wait for load: %v", entity.ErrUIDriver, err)
	}
	if err := browser.ScrollToEnd(pageCtx); err != nil {
		o.logger.Debug("Scrolling result page failed", "url", url, "error", err)
	}
	html, err := browser.HTML(pageCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read page: %v", entity.ErrUIDriver, err)
	}
	return o.extractor.Extract(url, html)
}

func (o *Orchestrator) finish(summary *entity.RunSummary) *entity.RunSummary {
	summary.FinishedAt = o.now()
	return summary
}
