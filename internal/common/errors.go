// Package common defines shared constants and sentinel errors used across
// the server, the poller and the admin tool. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrStorageFailure = errors.New("storage failure")
	ErrHashingFailure = errors.New("hashing failure")

	// Credential errors. Both collapse to one outcome at the HTTP boundary.
	ErrNoSuchUser    = errors.New("no such user")
	ErrWrongPassword = errors.New("wrong password")
	ErrDuplicateUser = errors.New("user already exists")

	// Session token errors. All three collapse to "unauthenticated".
	ErrMalformedToken = errors.New("can't parse the token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("expired token")

	// Feed errors. ErrNoSuchFeed covers both absence and foreign ownership.
	ErrNoSuchFeed    = errors.New("no such feed")
	ErrDuplicateFeed = errors.New("feed already exists")
	ErrInvalidFeed   = errors.New("invalid feed definition")
)
