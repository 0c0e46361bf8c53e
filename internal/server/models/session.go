package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to its owner until ValidUntil.
type Session struct {
	Owner      int64
	Token      uuid.UUID
	ValidUntil time.Time
}

// Expired reports whether the session is dead at now. The boundary instant
// itself counts as expired.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ValidUntil)
}
