package entity

import (
	"fmt"
	"net/url"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/dealgrid/directory-api/internal/yext"
)

// Status is the derived lifecycle state of a listing.
type Status string

// Listing states as reported to the partner feed.
const (
	StatusActive     Status = "ACTIVE"
	StatusSuppressed Status = "SUPPRESSED"
	StatusAvailable  Status = "AVAILABLE"
)

// Listing represents one physical business location.
type Listing struct {
	ID             int64      `json:"id"`
	CanonicalID    *int64     `json:"canonical_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Slug           string     `json:"slug"`
	Address1       string     `json:"address1"`
	Address2       *string    `json:"address2,omitempty"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Zip            string     `json:"zip"`
	Phone          string     `json:"phone"`
	Country        string     `json:"country"`
	HomepageURL    *string    `json:"homepage_url,omitempty"`
	FacebookURL    *string    `json:"facebook_url,omitempty"`
	TwitterHandle  *string    `json:"twitter_handle,omitempty"`
	HoursText      *string    `json:"hours_text,omitempty"`
	YextID         *string    `json:"yext_id,omitempty"`
	YextCanceled   bool       `json:"yext_canceled"`
	YextSuppressed bool       `json:"yext_suppressed"`
	ShowAddress    bool       `json:"show_address"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	YextData       *yext.Data `json:"yext_data,omitempty"`
	DateCreated    time.Time  `json:"date_created"`
	DateUpdated    time.Time  `json:"date_updated"`
	DateDeleted    *time.Time `json:"date_deleted,omitempty"`
}

// Status derives the listing's visibility state from its partner flags.
// date_deleted is deliberately not consulted: a deleted listing that was
// never canceled or suppressed still reports AVAILABLE. Long-standing
// behavior the partner integration depends on.
func (l *Listing) Status() Status {
	if l.YextID != nil && *l.YextID != "" && !l.YextCanceled && !l.YextSuppressed {
		return StatusActive
	}
	if l.YextSuppressed {
		return StatusSuppressed
	}
	return StatusAvailable
}

// Validate enforces the persist-time invariants: the core descriptive fields
// must be non-empty strings.
func (l *Listing) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", l.Name},
		{"address1", l.Address1},
		{"city", l.City},
		{"state", l.State},
		{"zip", l.Zip},
		{"phone", l.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return yext.NewValidationError(r.field, fmt.Sprintf("%s is required", r.field))
		}
	}
	return nil
}

// SlugText is the base text the slug generator works from.
func (l *Listing) SlugText() string {
	return fmt.Sprintf("%s %s %s", l.Name, l.City, l.Zip)
}

// CanonicalPath is the site-relative page path for this listing.
func (l *Listing) CanonicalPath() string {
	return "/stores/local/" + l.Slug
}

// URL builds the absolute canonical URL under the given application base.
func (l *Listing) URL(baseURL string) string {
	return baseURL + l.CanonicalPath()
}

// PhoneFormatted renders the stored 10-digit phone for display, falling back
// to the raw value when it does not parse.
func (l *Listing) PhoneFormatted() string {
	if l.Phone == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(l.Phone, "US")
	if err != nil {
		return l.Phone
	}
	return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
}

// HomepageHostname extracts the homepage's hostname, normalized to ASCII for
// internationalized domains. Empty when no homepage is set or it is garbage.
func (l *Listing) HomepageHostname() string {
	if l.HomepageURL == nil || *l.HomepageURL == "" {
		return ""
	}
	u, err := url.Parse(*l.HomepageURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// LogoURL prefers the partner-supplied logo over the locally stored image.
func (l *Listing) LogoURL() string {
	if l.YextData != nil {
		if logo := l.YextData.LogoURL(); logo != "" {
			return logo
		}
	}
	if l.ImageURL != nil {
		return *l.ImageURL
	}
	return ""
}

// Categories implements Storefront from the partner payload.
func (l *Listing) Categories() []yext.Category {
	if l.YextData == nil {
		return nil
	}
	return l.YextData.Categories
}

// Emails implements Storefront from the partner payload.
func (l *Listing) Emails() []yext.Email {
	if l.YextData == nil {
		return nil
	}
	return l.YextData.Emails
}

// PaymentOptions implements Storefront from the partner payload.
func (l *Listing) PaymentOptions() []string {
	if l.YextData == nil {
		return nil
	}
	return l.YextData.PaymentOptions
}

// GalleryImages implements Storefront from the partner payload.
func (l *Listing) GalleryImages() []yext.Image {
	if l.YextData == nil {
		return nil
	}
	return l.YextData.GalleryImages()
}
