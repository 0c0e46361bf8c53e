package feeds

import (
	"context"

	"github.com/dmitrijs2005/gentlepol/internal/server/models"
)

// Repository stores feed definitions. Single-feed mutations are conditional on
// both name and owner so the ownership check and the write are one statement.
type Repository interface {
	// Create inserts a feed owned by feed.Owner. A taken name yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, feed *models.Feed) error

	// ListNamesByOwner returns the names owned by owner in storage order.
	ListNamesByOwner(ctx context.Context, owner int64) ([]string, error)

	// GetByName returns the feed or common.ErrorNotFound.
	GetByName(ctx context.Context, name string) (*models.Feed, error)

	// UpdateByName overwrites url and selectors of the row matching name and
	// owner. No matching row yields common.ErrorNotFound.
	UpdateByName(ctx context.Context, owner int64, name string, feed *models.Feed) error

	// DeleteByName removes the row matching name and owner. No matching row
	// yields common.ErrorNotFound.
	DeleteByName(ctx context.Context, owner int64, name string) error

	// ForEach streams every stored feed to fn, stopping at the first error.
	ForEach(ctx context.Context, fn func(*models.Feed) error) error
}
