package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	feedsrepo "github.com/dmitrijs2005/gentlepol/internal/server/repositories/feeds"
	sessionsrepo "github.com/dmitrijs2005/gentlepol/internal/server/repositories/sessions"
	usersrepo "github.com/dmitrijs2005/gentlepol/internal/server/repositories/users"
	"github.com/google/uuid"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the three tables.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*models.Credential
	nextUser int64

	sessions map[uuid.UUID]models.Session

	feeds    map[int64]models.Feed
	nextFeed int64

	usersErr    error
	sessionsErr error
	feedsErr    error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.Credential{},
		sessions: map[uuid.UUID]models.Session{},
		feeds:    map[int64]models.Feed{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return memUsers{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository    { return memSessions{m.s} }
func (m *fakeRepoManager) Feeds(dbx.DBTX) feedsrepo.Repository          { return memFeeds{m.s} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, name, hash string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, c := range r.s.users {
		if c.Name == name {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.nextUser++
	r.s.users[r.s.nextUser] = &models.Credential{ID: r.s.nextUser, Name: name, PasswordHash: hash}
	return &models.User{ID: r.s.nextUser, Name: name}, nil
}

func (r memUsers) GetCredentialByName(_ context.Context, name string) (*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, c := range r.s.users {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	c, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: c.ID, Name: c.Name}, nil
}

type memSessions struct{ s *memStore }

func (r memSessions) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionsErr != nil {
		return r.s.sessionsErr
	}
	r.s.sessions[session.Token] = *session
	return nil
}

func (r memSessions) GetByToken(_ context.Context, token uuid.UUID) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionsErr != nil {
		return nil, r.s.sessionsErr
	}
	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

func (r memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionsErr != nil {
		return 0, r.s.sessionsErr
	}
	var n int64
	for tok, sess := range r.s.sessions {
		if !sess.ValidUntil.After(now) {
			delete(r.s.sessions, tok)
			n++
		}
	}
	return n, nil
}

type memFeeds struct{ s *memStore }

func (r memFeeds) Create(_ context.Context, feed *models.Feed) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.feedsErr != nil {
		return r.s.feedsErr
	}
	for _, f := range r.s.feeds {
		if f.Name == feed.Name {
			return common.ErrorAlreadyExists
		}
	}
	r.s.nextFeed++
	feed.ID = r.s.nextFeed
	r.s.feeds[feed.ID] = *feed
	return nil
}

func (r memFeeds) ordered() []models.Feed {
	out := make([]models.Feed, 0, len(r.s.feeds))
	for _, f := range r.s.feeds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memFeeds) ListNamesByOwner(_ context.Context, owner int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.feedsErr != nil {
		return nil, r.s.feedsErr
	}
	names := make([]string, 0)
	for _, f := range r.ordered() {
		if f.Owner == owner {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (r memFeeds) GetByName(_ context.Context, name string) (*models.Feed, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.feedsErr != nil {
		return nil, r.s.feedsErr
	}
	for _, f := range r.s.feeds {
		if f.Name == name {
			cp := f
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memFeeds) UpdateByName(_ context.Context, owner int64, name string, feed *models.Feed) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.feedsErr != nil {
		return r.s.feedsErr
	}
	for id, f := range r.s.feeds {
		if f.Name == name && f.Owner == owner {
			f.URL = feed.URL
			f.Selectors = feed.Selectors
			r.s.feeds[id] = f
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memFeeds) DeleteByName(_ context.Context, owner int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.feedsErr != nil {
		return r.s.feedsErr
	}
	for id, f := range r.s.feeds {
		if f.Name == name && f.Owner == owner {
			delete(r.s.feeds, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memFeeds) ForEach(_ context.Context, fn func(*models.Feed) error) error {
	r.s.mu.Lock()
	all := r.ordered()
	r.s.mu.Unlock()
	for i := range all {
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}
