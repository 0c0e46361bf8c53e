// Package feeds provides PostgreSQL-backed storage for feed definitions
// (the web_news table).
package feeds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
)

const feedColumns = `id, url, name, owner, selector_post, selector_title, selector_link,
	selector_description, selector_date, selector_image`

// PostgresRepository implements feed storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(row scanner) (*models.Feed, error) {
	f := &models.Feed{}
	err := row.Scan(&f.ID, &f.URL, &f.Name, &f.Owner,
		&f.Selectors.Post, &f.Selectors.Title, &f.Selectors.Link,
		&f.Selectors.Description, &f.Selectors.Date, &f.Selectors.Image)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a feed. The generated id is written back into feed.ID.
func (r *PostgresRepository) Create(ctx context.Context, feed *models.Feed) error {
	query := `
		INSERT INTO web_news (url, name, owner, selector_post, selector_title, selector_link,
			selector_description, selector_date, selector_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	s := feed.Selectors
	err := r.db.QueryRowContext(ctx, query,
		feed.URL, feed.Name, feed.Owner, s.Post, s.Title, s.Link, s.Description, s.Date, s.Image,
	).Scan(&feed.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListNamesByOwner returns feed names of one owner. Never returns nil on success.
func (r *PostgresRepository) ListNamesByOwner(ctx context.Context, owner int64) ([]string, error) {
	query := `SELECT name FROM web_news WHERE owner = $1`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select feed names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return names, nil
}

// GetByName looks a feed up by its globally unique name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM web_news WHERE name = $1`

	f, err := scanFeed(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// UpdateByName rewrites the mutable columns; name and owner are only matched.
func (r *PostgresRepository) UpdateByName(ctx context.Context, owner int64, name string, feed *models.Feed) error {
	query := `
		UPDATE web_news SET
			url = $3,
			selector_post = $4,
			selector_title = $5,
			selector_link = $6,
			selector_description = $7,
			selector_date = $8,
			selector_image = $9
		WHERE name = $1 AND owner = $2
	`
	s := feed.Selectors
	res, err := r.db.ExecContext(ctx, query,
		name, owner, feed.URL, s.Post, s.Title, s.Link, s.Description, s.Date, s.Image)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// DeleteByName removes the row only if owner matches.
func (r *PostgresRepository) DeleteByName(ctx context.Context, owner int64, name string) error {
	query := `DELETE FROM web_news WHERE name = $1 AND owner = $2`

	res, err := r.db.ExecContext(ctx, query, name, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// ForEach walks the whole table in id order.
func (r *PostgresRepository) ForEach(ctx context.Context, fn func(*models.Feed) error) error {
	query := `SELECT ` + feedColumns + ` FROM web_news ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to select feeds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
