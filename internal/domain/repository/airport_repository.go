package repository

import (
	"context"

	"flightlink-service/internal/domain/entity"
)

// AirportRepository defines the interface for the IATA reference set
type AirportRepository interface {
	LoadCodes(ctx context.Context) (entity.AirportSet, error)
}

// AirportWriter persists a discovered list of IATA codes
type AirportWriter interface {
	SaveCodes(ctx context.Context, codes []string) error
}
