// Package sessions provides a PostgreSQL-backed repository for the sessions
// issued at login.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements session storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the session row as given; expiry is computed by the caller.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_session (owner, token, valid_until)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, session.Owner, session.Token.String(), session.ValidUntil); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// GetByToken returns the session row for token.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByToken(ctx context.Context, token uuid.UUID) (*models.Session, error) {
	query := `
		SELECT owner, token, valid_until
		FROM user_session
		WHERE token = $1
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token.String()).Scan(&session.Owner, &session.Token, &session.ValidUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// DeleteExpired removes sessions that are dead at now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM user_session
		WHERE valid_until <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
