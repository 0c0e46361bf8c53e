package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/config"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/feeds"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// migrator hands out Postgres repositories and records migration calls.
type migrator struct {
	err   error
	calls int
}

func (m *migrator) RunMigrations(context.Context, *sql.DB) error {
	m.calls++
	return m.err
}

func (m *migrator) Users(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) }
func (m *migrator) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}
func (m *migrator) Feeds(db dbx.DBTX) feeds.Repository { return feeds.NewPostgresRepository(db) }

func testApp(t *testing.T, rm repomanager.RepositoryManager) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true), sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	app := newApp(cfg, logging.Nop{}, db, rm)
	app.dbWait = 300 * time.Millisecond
	return app, mock
}

func TestNewApp_BuildsServices(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.db.Close()

	assert.NotNil(t, app.authService)
	assert.NotNil(t, app.feedService)
	assert.NotNil(t, app.repomanager)
}

func TestRun_FailsWhenMigrationsFail(t *testing.T) {
	rm := &migrator{err: errors.New("boom")}
	app, mock := testApp(t, rm)
	mock.ExpectPing()

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
	assert.Equal(t, 1, rm.calls)
}

func TestRun_RetriesPing(t *testing.T) {
	rm := &migrator{err: errors.New("stop here")}
	app, mock := testApp(t, rm)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
	assert.Equal(t, 1, rm.calls)
}

func TestRun_FailsWhenPingFails(t *testing.T) {
	rm := &migrator{}
	app, mock := testApp(t, rm)
	for i := 0; i < 20; i++ {
		mock.ExpectPing().WillReturnError(errors.New("no db"))
	}

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	assert.Zero(t, rm.calls)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	rm := &migrator{}
	app, mock := testApp(t, rm)
	mock.ExpectPing()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestRunPoller_SinglePass(t *testing.T) {
	rm := &migrator{}
	app, mock := testApp(t, rm)
	mock.ExpectPing()
	mock.ExpectQuery(`FROM web_news ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "name", "owner", "selector_post", "selector_title",
			"selector_link", "selector_description", "selector_date", "selector_image"}).
			AddRow(int64(1), "https://x", "blog", int64(1), nil, nil, "a", nil, nil, nil))

	require.NoError(t, app.RunPoller(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
