package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gentlepol/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgWrongCredentials = "wrong username or password"
	msgUnauthenticated  = "unauthenticated"
	msgNoSuchFeed       = "no such feed"
	msgInternal         = "internal server error"
)

// statusFor collapses service errors into what an untrusted caller may see.
// Credential failures are indistinguishable from each other, and so are the
// token failures.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrNoSuchUser), errors.Is(err, common.ErrWrongPassword):
		return http.StatusUnauthorized, msgWrongCredentials
	case errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrExpiredToken):
		return http.StatusUnauthorized, msgUnauthenticated
	case errors.Is(err, common.ErrNoSuchFeed):
		return http.StatusNotFound, msgNoSuchFeed
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, common.ErrDuplicateFeed):
		return http.StatusConflict, "feed already exists"
	case errors.Is(err, common.ErrInvalidFeed):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes the collapsed error; details of server-side failures only go
// to the log.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "error", err, "status", status)
	}
	writeError(w, status, msg)
}
