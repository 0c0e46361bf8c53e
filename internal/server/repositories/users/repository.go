// Package users declares and implements persistence of user identities and
// their credentials.
package users

import (
	"context"

	"github.com/dmitrijs2005/gentlepol/internal/server/models"
)

// Repository defines user storage operations.
type Repository interface {
	// Create inserts a user with an already hashed password. A taken name
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, name string, passwordHash string) (*models.User, error)

	// GetCredentialByName returns the login projection or common.ErrorNotFound.
	GetCredentialByName(ctx context.Context, name string) (*models.Credential, error)

	// GetByID returns the public user or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
