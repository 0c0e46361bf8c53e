package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	feedsrepo "github.com/dmitrijs2005/gentlepol/internal/server/repositories/feeds"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/repomanager"
)

// FeedService performs owner-scoped operations on feed definitions.
// A feed that exists but belongs to someone else is reported exactly like a
// feed that does not exist.
type FeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewFeedService constructs a FeedService.
func NewFeedService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *FeedService {
	return &FeedService{db: db, repomanager: m, logger: logger.With("module", "feeds")}
}

// CreateFeed stores feed with userID as its owner, whatever feed.Owner says.
func (s *FeedService) CreateFeed(ctx context.Context, userID int64, feed *models.Feed) error {
	if err := s.createFeed(ctx, s.repomanager.Feeds(s.db), userID, feed); err != nil {
		return err
	}

	s.logger.Info(ctx, "feed created", "user_id", userID, "feed", feed.Name)
	return nil
}

func (s *FeedService) createFeed(ctx context.Context, repo feedsrepo.Repository, userID int64, feed *models.Feed) error {
	if err := feed.Validate(); err != nil {
		return err
	}

	record := *feed
	record.Owner = userID

	if err := repo.Create(ctx, &record); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrDuplicateFeed
		}
		return fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
	return nil
}

// ListFeedNames returns the names of userID's feeds; empty, never nil.
func (s *FeedService) ListFeedNames(ctx context.Context, userID int64) ([]string, error) {
	names, err := s.repomanager.Feeds(s.db).ListNamesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetFeed returns the named feed if userID owns it.
func (s *FeedService) GetFeed(ctx context.Context, userID int64, name string) (*models.Feed, error) {
	feed, err := s.repomanager.Feeds(s.db).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoSuchFeed
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
	if feed.Owner != userID {
		return nil, common.ErrNoSuchFeed
	}
	return feed, nil
}

// UpdateFeed replaces url and selectors of the named feed owned by userID.
// The ownership check and the write are a single conditional statement.
func (s *FeedService) UpdateFeed(ctx context.Context, userID int64, name string, feed *models.Feed) error {
	record := *feed
	record.Name = name
	record.Owner = userID
	if err := record.Validate(); err != nil {
		return err
	}

	err := s.repomanager.Feeds(s.db).UpdateByName(ctx, userID, name, &record)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoSuchFeed
		}
		return fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "feed updated", "user_id", userID, "feed", name)
	return nil
}

// DeleteFeed removes the named feed if userID owns it.
func (s *FeedService) DeleteFeed(ctx context.Context, userID int64, name string) error {
	err := s.repomanager.Feeds(s.db).DeleteByName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoSuchFeed
		}
		return fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "feed deleted", "user_id", userID, "feed", name)
	return nil
}

// ImportFeeds creates all feeds for userID in one transaction. Either every
// feed is stored or none is.
func (s *FeedService) ImportFeeds(ctx context.Context, userID int64, feeds []*models.Feed) error {
	for i, f := range feeds {
		if f == nil {
			return fmt.Errorf("feed #%d: %w", i, common.ErrInvalidFeed)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("feed #%d: %w", i, err)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Feeds(tx)
		for _, f := range feeds {
			if err := s.createFeed(ctx, repo, userID, f); err != nil {
				return fmt.Errorf("feed %q: %w", f.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range feeds {
		s.logger.Info(ctx, "feed created", "user_id", userID, "feed", f.Name)
	}
	return nil
}
