// Package driver declares the browser capabilities the pipeline depends on.
package driver

import (
	"context"
	"time"

	"flightlink-service/internal/domain/entity"
)

// Browser is a single browsing context of a remote browser
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, target string) error
	Fill(ctx context.Context, target, text string) error
	Press(ctx context.Context, target, key string) error
	WaitForLoad(ctx context.Context) error
	WaitForTimeout(ctx context.Context, d time.Duration) error
	// ScrollToEnd scrolls the page until lazily rendered content has loaded
	ScrollToEnd(ctx context.Context) error

	// SubscribeNewSurface reports the loaded URL of every page the context
	// opens from now on, in load order. The returned func unsubscribes.
	SubscribeNewSurface(ctx context.Context) (<-chan string, func(), error)

	CurrentURL(ctx context.Context) (string, error)
	// HTML returns the serialized document of the current page
	HTML(ctx context.Context) (string, error)

	IsConnected() bool
	// Disconnected is closed once the browsing context is lost
	Disconnected() <-chan struct{}
	Close() error
}

// SearchForm drives the flight search form of the target site on top of a Browser
type SearchForm interface {
	Bootstrap(ctx context.Context) error
	SelectOrigin(ctx context.Context, code string) error
	SelectDestination(ctx context.Context, code string) error
	SelectTravelers(ctx context.Context, counts entity.TravelerCounts) error
	SelectCabin(ctx context.Context, class entity.CabinClass) error
	OpenCalendar(ctx context.Context) error
	NextMonth(ctx context.Context) error
	PickDay(ctx context.Context, day time.Time) error
	SubmitSearch(ctx context.Context) error
}

// Session pairs a browsing context with the form bound to it
type Session struct {
	Browser Browser
	Form    SearchForm
}

// SessionFactory opens a fresh browsing session. Sessions are never reused
// after Close.
type SessionFactory interface {
	Open(ctx context.Context) (*Session, error)
}

// AirportIndex reads the site's airport listing
type AirportIndex interface {
	AirportTableText(ctx context.Context) (string, error)
}
