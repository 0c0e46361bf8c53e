// Package poller walks every stored feed definition. Scraping is not done
// here; a pass only enumerates and logs the rows.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/feeds"
)

type Poller struct {
	repo     feeds.Repository
	interval time.Duration
	logger   logging.Logger
}

// New returns a Poller. A zero interval makes Run do a single pass.
func New(repo feeds.Repository, interval time.Duration, l logging.Logger) *Poller {
	return &Poller{repo: repo, interval: interval, logger: l.With("module", "poller")}
}

// Pass enumerates all feeds once and returns how many were seen.
func (p *Poller) Pass(ctx context.Context) (int, error) {
	n := 0
	err := p.repo.ForEach(ctx, func(f *models.Feed) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		p.logger.Info(ctx, "feed", "name", f.Name, "url", f.URL, "owner", f.Owner)
		return nil
	})
	return n, err
}

// Run performs one pass, then repeats every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.pass(ctx); err != nil || p.interval <= 0 {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "Stopping poller...")
			return nil
		case <-ticker.C:
			if err := p.pass(ctx); err != nil {
				return err
			}
		}
	}
}

func (p *Poller) pass(ctx context.Context) error {
	start := time.Now()
	n, err := p.Pass(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		p.logger.Error(ctx, "poll pass failed", "error", err)
		return err
	}
	p.logger.Info(ctx, "poll pass done", "feeds", n, "duration", time.Since(start))
	return nil
}
