package browser

import (
	"context"
	"fmt"

	"flightlink-service/pkg/logger"
)

// AirportPage reads the airport index table of the site
type AirportPage struct {
	opts     Options
	bindings *Bindings
	logger   logger.Logger
}

// AirportTableText returns the raw text of the airport table section
func (p *AirportPage) AirportTableText(ctx context.Context) (string, error) {
	b, err := NewChromeBrowser(ctx, p.opts, p.logger)
	if err != nil {
		return "", err
	}
	defer b.Close()

	if err := b.Navigate(ctx, p.bindings.AirportsURL); err != nil {
		return "", fmt.Errorf("open airports page: %w", err)
	}
	text, err := b.SectionText(ctx, p.bindings.Airports.Section, p.bindings.Airports.Marker)
	if err != nil {
		return "", fmt.Errorf("read airport table: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("no %q section containing %q", p.bindings.Airports.Section, p.bindings.Airports.Marker)
	}
	return text, nil
}
