package repository

import (
	"context"

	"flightlink-service/internal/domain/entity"
)

// ListingRepository is the append-only table of extracted listing records
type ListingRepository interface {
	Append(ctx context.Context, records []*entity.FlightListingRecord) error
	Close() error
}
