// Package httpapi exposes the authentication and feed operations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/config"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Authenticator is the part of services.AuthService the API needs.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// FeedRegistry is the part of services.FeedService the API needs.
type FeedRegistry interface {
	CreateFeed(ctx context.Context, userID int64, feed *models.Feed) error
	ListFeedNames(ctx context.Context, userID int64) ([]string, error)
	GetFeed(ctx context.Context, userID int64, name string) (*models.Feed, error)
	UpdateFeed(ctx context.Context, userID int64, name string, feed *models.Feed) error
	DeleteFeed(ctx context.Context, userID int64, name string) error
}

type HTTPServer struct {
	address         string
	auth            Authenticator
	feeds           FeedRegistry
	logger          logging.Logger
	cookieName      string
	cookieSecure    bool
	sessionValidity time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, auth Authenticator, feeds FeedRegistry) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		auth:            auth,
		feeds:           feeds,
		logger:          l.With("module", "http_server"),
		cookieName:      cfg.CookieName,
		cookieSecure:    cfg.CookieSecure,
		sessionValidity: cfg.SessionValidityDuration,
	}
}

// Router builds the chi route tree.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(metrics)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.registerUser)
		r.Post("/login", s.loginUser)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/feeds", s.listFeeds)
		r.Post("/feeds", s.createFeed)
		r.Get("/feeds/{name}", s.getFeed)
		r.Put("/feeds/{name}", s.updateFeed)
		r.Delete("/feeds/{name}", s.deleteFeed)
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
