package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gentlepol/internal/common"
)

// Selectors are the extraction hints stored with a feed. They are opaque
// strings here; only Link is required.
type Selectors struct {
	Post        *string `json:"post"`
	Title       *string `json:"title"`
	Link        string  `json:"link"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Image       *string `json:"image"`
}

// Feed is a named web-feed definition. Name is the external identifier and is
// unique across all users. ID and Owner never leave the server.
type Feed struct {
	ID        int64     `json:"-"`
	Owner     int64     `json:"-"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Selectors Selectors `json:"selectors"`
}

// Validate checks the fields a definition cannot live without.
func (f *Feed) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("%w: name is required", common.ErrInvalidFeed)
	case strings.TrimSpace(f.URL) == "":
		return fmt.Errorf("%w: url is required", common.ErrInvalidFeed)
	case strings.TrimSpace(f.Selectors.Link) == "":
		return fmt.Errorf("%w: selectors.link is required", common.ErrInvalidFeed)
	}
	return nil
}
