package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gentlepol/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps JSON and form bodies.
const maxBodyBytes = 1 << 20

func (s *HTTPServer) credentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return "", "", false
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return "", "", false
	}
	return username, password, true
}

func (s *HTTPServer) registerUser(w http.ResponseWriter, r *http.Request) {
	username, password, ok := s.credentials(w, r)
	if !ok {
		return
	}

	if err := s.auth.Register(r.Context(), username, password); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *HTTPServer) loginUser(w http.ResponseWriter, r *http.Request) {
	username, password, ok := s.credentials(w, r)
	if !ok {
		return
	}

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusUnauthorized {
			loginsTotal.WithLabelValues("rejected").Inc()
		} else {
			loginsTotal.WithLabelValues("error").Inc()
		}
		s.fail(w, r, err)
		return
	}
	loginsTotal.WithLabelValues("ok").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeText(w, http.StatusOK, token)
}

func (s *HTTPServer) decodeFeed(w http.ResponseWriter, r *http.Request) (*models.Feed, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	feed := &models.Feed{}
	if err := dec.Decode(feed); err != nil {
		writeError(w, http.StatusBadRequest, "malformed feed definition")
		return nil, false
	}
	return feed, true
}

// feedName returns the decoded {name} path segment, so names containing
// reserved characters such as "/" are addressable in escaped form.
func feedName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed feed name")
		return "", false
	}
	return name, true
}

func (s *HTTPServer) createFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	feed, ok := s.decodeFeed(w, r)
	if !ok {
		return
	}

	if err := s.feeds.CreateFeed(r.Context(), user.ID, feed); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *HTTPServer) listFeeds(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	names, err := s.feeds.ListFeedNames(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *HTTPServer) getFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	name, ok := feedName(w, r)
	if !ok {
		return
	}

	feed, err := s.feeds.GetFeed(r.Context(), user.ID, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *HTTPServer) updateFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	name, ok := feedName(w, r)
	if !ok {
		return
	}
	feed, ok := s.decodeFeed(w, r)
	if !ok {
		return
	}

	if err := s.feeds.UpdateFeed(r.Context(), user.ID, name, feed); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) deleteFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	name, ok := feedName(w, r)
	if !ok {
		return
	}

	if err := s.feeds.DeleteFeed(r.Context(), user.ID, name); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
