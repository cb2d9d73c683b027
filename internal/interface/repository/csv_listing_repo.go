package repository

import (
	"context"
	"sync"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
)

// CSVListingRepository implements ListingRepository on the 12 column listing CSV
type CSVListingRepository struct {
	mu  sync.Mutex
	out *csvAppender
}

// NewCSVListingRepository opens the listing table at path, truncating it when fresh is set
func NewCSVListingRepository(path string, fresh bool) (repository.ListingRepository, error) {
	out, err := openCSVAppender(path, entity.ListingHeader, fresh)
	if err != nil {
		return nil, err
	}
	return &CSVListingRepository{out: out}, nil
}

// Append writes one row per record
func (r *CSVListingRepository) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	return r.out.write(rows...)
}

// Close releases the file and its lock
func (r *CSVListingRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.close()
}
