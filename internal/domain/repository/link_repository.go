package repository

import (
	"context"

	"flightlink-service/internal/domain/entity"
)

// LinkRepository is the append-only log of captured links.
// Append assigns the next id of a zero-based sequence and sets it on link.
type LinkRepository interface {
	Append(ctx context.Context, link *entity.CapturedLink) error
	List(ctx context.Context) ([]*entity.CapturedLink, error)
	Close() error
}
