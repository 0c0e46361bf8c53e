// Package sessions declares the repository contract for login sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/google/uuid"
)

// Repository defines operations for issuing and looking up sessions.
// Sessions are never updated; expired rows stay until DeleteExpired runs.
type Repository interface {
	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error

	// GetByToken returns the session for token or common.ErrorNotFound.
	GetByToken(ctx context.Context, token uuid.UUID) (*models.Session, error)

	// DeleteExpired removes every session with valid_until <= now and reports
	// how many rows went away.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
