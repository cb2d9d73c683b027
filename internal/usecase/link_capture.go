package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"
)

// CaptureState tracks a single capture attempt
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureArmed
	CaptureCapturing
	CaptureResolved
	CaptureFailed
)

func (s CaptureState) String() string {
	switch s {
	case CaptureArmed:
		return "armed"
	case CaptureCapturing:
		return "capturing"
	case CaptureResolved:
		return "resolved"
	case CaptureFailed:
		return "failed"
	default:
		return "idle"
	}
}

// CaptureResult is the outcome of one capture attempt
type CaptureResult struct {
	URL        string
	OriginURL  string
	Candidates []string
	Fallback   bool
	State      CaptureState
}

// SelfLink reports whether the capture resolved to the page it started on
func (r *CaptureResult) SelfLink() bool {
	return r.URL == r.OriginURL
}

// LinkCapture identifies the search result page among the pages a single
// UI action opens, waiting at most one capture window
type LinkCapture struct {
	window         time.Duration
	rejectPatterns []string
	logger         logger.Logger
}

// NewLinkCapture creates a new link capture. Candidate URLs containing any of
// rejectPatterns, compared case-insensitively, are never selected.
func NewLinkCapture(window time.Duration, rejectPatterns []string, logger logger.Logger) *LinkCapture {
	patterns := make([]string, 0, len(rejectPatterns))
	for _, p := range rejectPatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &LinkCapture{
		window:         window,
		rejectPatterns: patterns,
		logger:         logger,
	}
}

// Capture arms a new-surface subscription on browser, fires trigger and
// collects loaded URLs until the window closes. The first candidate that is
// neither the origin page nor rejected wins; without one the current page URL
// is used and the result is flagged as a fallback.
func (c *LinkCapture) Capture(ctx context.Context, browser driver.Browser, trigger func(context.Context) error) (*CaptureResult, error) {
	res := &CaptureResult{State: CaptureIdle}
	if !browser.IsConnected() {
		res.State = CaptureFailed
		return res, fmt.Errorf("%w: browsing context closed before capture", entity.ErrConnectivity)
	}

	origin, err := browser.CurrentURL(ctx)
	if err != nil {
		c.logger.Warn("Could not read origin url", "error", err)
	}
	res.OriginURL = origin

	events, unsubscribe, err := browser.SubscribeNewSurface(ctx)
	if err != nil {
		res.State = CaptureFailed
		if !browser.IsConnected() {
			return res, fmt.Errorf("%w: subscribe: %v", entity.ErrConnectivity, err)
		}
		return res, fmt.Errorf("%w: subscribe: %v", entity.ErrUIDriver, err)
	}
	defer unsubscribe()
	res.State = CaptureArmed

	if err := trigger(ctx); err != nil {
		c.logger.Warn("Capture trigger failed, still waiting for new pages", "error", err)
	}
	res.State = CaptureCapturing

	timer := time.NewTimer(c.window)
	defer timer.Stop()

collect:
	for {
		select {
		case u, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			res.Candidates = append(res.Candidates, u)
		case <-timer.C:
			break collect
		case <-browser.Disconnected():
			res.State = CaptureFailed
			return res, fmt.Errorf("%w: browsing context lost during capture", entity.ErrConnectivity)
		case <-ctx.Done():
			res.State = CaptureFailed
			return res, ctx.Err()
		}
	}

	for _, u := range res.Candidates {
		if c.accept(u, origin) {
			res.URL = u
			res.State = CaptureResolved
			return res, nil
		}
	}

	res.Fallback = true
	current, err := browser.CurrentURL(ctx)
	if err != nil || current == "" {
		current = origin
	}
	res.URL = current
	res.State = CaptureResolved
	c.logger.Debug("No capture candidate accepted",
		"candidates", len(res.Candidates),
		"fallback", current)
	return res, nil
}

func (c *LinkCapture) accept(u, origin string) bool {
	if u == "" || u == origin {
		return false
	}
	lower := strings.ToLower(u)
	for _, p := range c.rejectPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}
