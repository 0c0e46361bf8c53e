// Package services contains server-side business logic. This file implements
// AuthService, which registers users, logs them in by issuing opaque session
// tokens and resolves those tokens back to users.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/config"
	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once at start-up; logins for unknown users compare
// against it so they cost the same as a real mismatch.
const dummyPassword = "gentlepol-no-such-user"

// AuthService provides authentication-related operations:
// - Register: create users with a bcrypt password hash
// - Login: verify credentials and issue a session token
// - Authenticate: resolve a session token to its user
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	sessionValidity time.Duration
	bcryptCost      int
	dummyHash       []byte
	now             func() time.Time
	logger          logging.Logger
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	s := &AuthService{
		db:              db,
		repomanager:     m,
		sessionValidity: cfg.SessionValidityDuration,
		bcryptCost:      cfg.BcryptCost,
		now:             time.Now,
		logger:          logger.With("module", "auth"),
	}
	// A failure here only disables the timing padding.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), cfg.BcryptCost)
	return s
}

// Register hashes password and stores a new user.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrHashingFailure, err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrDuplicateUser
		}
		return fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return nil
}

// Login verifies the credentials and, on success, persists a new session and
// returns its token in canonical UUID form.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	cred, err := repo.GetCredentialByName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if s.dummyHash != nil {
				_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			}
			return "", common.ErrNoSuchUser
		}
		return "", fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", common.ErrWrongPassword
		}
		return "", fmt.Errorf("%w: %w", common.ErrHashingFailure, err)
	}

	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	session := &models.Session{
		Owner:      cred.ID,
		Token:      token,
		ValidUntil: s.now().Add(s.sessionValidity),
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "session issued", "user_id", cred.ID, "valid_until", session.ValidUntil)
	return token.String(), nil
}

// Authenticate resolves token to its owning user. Expired sessions are
// reported but left in storage.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, common.ErrMalformedToken
	}

	session, err := s.repomanager.Sessions(s.db).GetByToken(ctx, parsed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	if session.Expired(s.now()) {
		return nil, common.ErrExpiredToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.Owner)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session owner is missing", "user_id", session.Owner)
			return nil, common.ErrorInternal
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
	return user, nil
}

// PurgeExpiredSessions deletes every session that is no longer valid at the
// current time and returns how many were removed.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
	s.logger.Info(ctx, "expired sessions purged", "count", n)
	return n, nil
}
