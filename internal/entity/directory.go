package entity

import (
	"time"

	"github.com/dealgrid/directory-api/internal/yext"
)

// Storefront is the capability shared by every store variant the directory
// renders: local listings, online stores, and chains.
type Storefront interface {
	Categories() []yext.Category
	Emails() []yext.Email
	PaymentOptions() []string
	GalleryImages() []yext.Image
	CanonicalPath() string
}

var (
	_ Storefront = (*Listing)(nil)
	_ Storefront = (*OnlineStore)(nil)
	_ Storefront = (*Chain)(nil)
)

// City is a directory city page entity.
type City struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Zip         string    `json:"zip"`
	County      string    `json:"county"`
	StateCode   string    `json:"state_code"`
	CountryCode string    `json:"country_code"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
}

// Page is an editorial content page consumed by the rendering layer.
type Page struct {
	ID              int64  `json:"id"`
	Path            string `json:"path"`
	Title           string `json:"title"`
	MetaKeywords    string `json:"meta_keywords"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
	CanonicalURL    string `json:"canonical_url"`
}

// OnlineStore is a web-only merchant without a physical location.
type OnlineStore struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Slug                 string    `json:"slug"`
	HomepageURL          string    `json:"homepage_url"`
	AffiliateHomepageURL string    `json:"affiliate_homepage_url"`
	DateCreated          time.Time `json:"date_created"`
	DateUpdated          time.Time `json:"date_updated"`
}

// Categories implements Storefront; online stores carry no partner data.
func (s *OnlineStore) Categories() []yext.Category { return nil }

// Emails implements Storefront.
func (s *OnlineStore) Emails() []yext.Email { return nil }

// PaymentOptions implements Storefront.
func (s *OnlineStore) PaymentOptions() []string { return nil }

// GalleryImages implements Storefront.
func (s *OnlineStore) GalleryImages() []yext.Image { return nil }

// CanonicalPath implements Storefront.
func (s *OnlineStore) CanonicalPath() string { return "/stores/online/" + s.Slug }

// Chain is a multi-location brand entity.
type Chain struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	HomepageURL string    `json:"homepage_url"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
}

// Categories implements Storefront; chains carry no partner data.
func (c *Chain) Categories() []yext.Category { return nil }

// Emails implements Storefront.
func (c *Chain) Emails() []yext.Email { return nil }

// PaymentOptions implements Storefront.
func (c *Chain) PaymentOptions() []string { return nil }

// GalleryImages implements Storefront.
func (c *Chain) GalleryImages() []yext.Image { return nil }

// CanonicalPath implements Storefront.
func (c *Chain) CanonicalPath() string { return "/stores/chain/" + c.Slug }
