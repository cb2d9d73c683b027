package usecase

import (
	"context"
	"fmt"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/repository"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/utils"
)

// AirportDiscovery refreshes the IATA reference set from the site's airport index
type AirportDiscovery struct {
	index  driver.AirportIndex
	writer repository.AirportWriter
	logger logger.Logger
}

// NewAirportDiscovery creates a new airport discovery
func NewAirportDiscovery(index driver.AirportIndex, writer repository.AirportWriter, logger logger.Logger) *AirportDiscovery {
	return &AirportDiscovery{
		index:  index,
		writer: writer,
		logger: logger,
	}
}

// Refresh scrapes the airport table and saves the codes found. The first
// match comes from the table's "IATA code" column header and is dropped.
func (d *AirportDiscovery) Refresh(ctx context.Context) ([]string, error) {
	text, err := d.index.AirportTableText(ctx)
	if err != nil {
		return nil, fmt.Errorf("read airport index: %w", err)
	}

	codes := utils.ExtractIATACodes(text)
	if len(codes) < 2 {
		return nil, fmt.Errorf("airport index yielded %d codes", len(codes))
	}
	codes = codes[1:]

	if err := d.writer.SaveCodes(ctx, codes); err != nil {
		return nil, fmt.Errorf("save airport codes: %w", err)
	}
	d.logger.Info("Airport reference set refreshed", "codes", len(codes))
	return codes, nil
}
