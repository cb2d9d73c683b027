package repository

import (
	"context"

	"flightlink-service/internal/domain/entity"
)

// BatchRepository yields the raw travel requests of one batch, in order
type BatchRepository interface {
	Rows(ctx context.Context) ([]entity.RawRequest, error)
}
