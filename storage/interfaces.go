package storage

import (
	"context"

	"car-evaluator/models"
)

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingReader loads previously saved listings for an offline analysis.
type ListingReader interface {
	FetchByMakeModel(ctx context.Context, brand, model string) ([]*models.Listing, error)
	Close() error
}
