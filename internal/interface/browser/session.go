package browser

import (
	"context"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/pkg/logger"
)

// ChromeSessionFactory starts a fresh Chrome process per session
type ChromeSessionFactory struct {
	opts     Options
	bindings *Bindings
	logger   logger.Logger
}

// NewChromeSessionFactory creates a new session factory
func NewChromeSessionFactory(opts Options, bindings *Bindings, logger logger.Logger) *ChromeSessionFactory {
	return &ChromeSessionFactory{
		opts:     opts,
		bindings: bindings,
		logger:   logger,
	}
}

// Open starts Chrome and binds the search form to its tab
func (f *ChromeSessionFactory) Open(ctx context.Context) (*driver.Session, error) {
	b, err := NewChromeBrowser(ctx, f.opts, f.logger)
	if err != nil {
		return nil, err
	}
	return &driver.Session{
		Browser: b,
		Form:    NewKayakForm(b, f.bindings, f.logger),
	}, nil
}

// AirportPage opens a Chrome session on the airport index page
func (f *ChromeSessionFactory) AirportPage() *AirportPage {
	return &AirportPage{opts: f.opts, bindings: f.bindings, logger: f.logger}
}
