package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo only implements ForEach; the other methods are never called.
type stubRepo struct {
	feeds  []*models.Feed
	err    error
	passes atomic.Int32
}

func (s *stubRepo) Create(context.Context, *models.Feed) error { return nil }
func (s *stubRepo) ListNamesByOwner(context.Context, int64) ([]string, error) {
	return nil, nil
}
func (s *stubRepo) GetByName(context.Context, string) (*models.Feed, error) { return nil, nil }
func (s *stubRepo) UpdateByName(context.Context, int64, string, *models.Feed) error {
	return nil
}
func (s *stubRepo) DeleteByName(context.Context, int64, string) error { return nil }

func (s *stubRepo) ForEach(_ context.Context, fn func(*models.Feed) error) error {
	s.passes.Add(1)
	if s.err != nil {
		return s.err
	}
	for _, f := range s.feeds {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func TestPass_CountsEveryFeed(t *testing.T) {
	repo := &stubRepo{feeds: []*models.Feed{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	p := New(repo, 0, logging.Nop{})

	n, err := p.Pass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRun_SinglePass(t *testing.T) {
	repo := &stubRepo{feeds: []*models.Feed{{Name: "a"}}}
	p := New(repo, 0, logging.Nop{})

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, int32(1), repo.passes.Load())
}

func TestRun_PropagatesStorageError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	p := New(repo, 0, logging.Nop{})

	assert.EqualError(t, p.Run(context.Background()), "db down")
}

func TestRun_RepeatsUntilCancelled(t *testing.T) {
	repo := &stubRepo{feeds: []*models.Feed{{Name: "a"}}}
	p := New(repo, 10*time.Millisecond, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return repo.passes.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPass_StopsOnCancelledContext(t *testing.T) {
	repo := &stubRepo{feeds: []*models.Feed{{Name: "a"}, {Name: "b"}}}
	p := New(repo, 0, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := p.Pass(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.NoError(t, p.Run(ctx))
}
