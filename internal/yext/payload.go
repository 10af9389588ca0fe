// Package yext models the partner feed's listing payload: wire shapes,
// structural validation, and the normalized value object stored alongside a
// listing.
package yext

import (
	"encoding/json"
	"strings"
)

// Image is a partner-supplied picture tagged with its role (LOGO, GALLERY...).
type Image struct {
	URL  string `json:"url" validate:"required"`
	Type string `json:"type" validate:"required"`
}

// Category is a partner taxonomy entry.
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Email is a contact address attached to a listing.
type Email struct {
	Address string `json:"address" validate:"required"`
}

// Video is a promotional video link.
type Video struct {
	URL string `json:"url" validate:"required"`
}

// PhoneNumber is the structured form of a phone entry's number.
type PhoneNumber struct {
	CountryCode *string `json:"countryCode,omitempty"`
	Number      string  `json:"number" validate:"required,len=10,numeric"`
}

// Phone is one phone entry; Type distinguishes MAIN from secondary lines.
type Phone struct {
	Number      PhoneNumber `json:"number"`
	Type        string      `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`
}

// phoneWire mirrors Phone but leaves the number field raw, because the feed
// sends it either as a bare string or as a structured object.
type phoneWire struct {
	Number      json.RawMessage `json:"number"`
	CountryCode *string         `json:"countryCode"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

// UnmarshalJSON accepts both phone shapes. A bare string number is wrapped
// into the structured form, carrying over the entry's top-level countryCode.
func (p *Phone) UnmarshalJSON(data []byte) error {
	var wire phoneWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.Type = wire.Type
	p.Description = wire.Description
	p.Number = PhoneNumber{}

	if len(wire.Number) == 0 || string(wire.Number) == "null" {
		return nil
	}
	if wire.Number[0] == '"' {
		var number string
		if err := json.Unmarshal(wire.Number, &number); err != nil {
			return err
		}
		p.Number = PhoneNumber{Number: number, CountryCode: wire.CountryCode}
		return nil
	}
	return json.Unmarshal(wire.Number, &p.Number)
}

// URL is a partner-supplied link; Type or Description classifies it.
type URL struct {
	URL         string  `json:"url" validate:"required"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	DisplayURL  *string `json:"displayUrl,omitempty"`
}

// SpecialOffer is an optional promotional blurb.
type SpecialOffer struct {
	URL     *string `json:"url,omitempty"`
	Message *string `json:"message,omitempty"`
}

// Address is the partner's structured street address.
type Address struct {
	Address        string  `json:"address" validate:"required"`
	Address2       *string `json:"address2,omitempty"`
	DisplayAddress *string `json:"displayAddress,omitempty"`
	City           string  `json:"city" validate:"required"`
	Visible        bool    `json:"visible"`
	State          string  `json:"state" validate:"required"`
	PostalCode     string  `json:"postalCode" validate:"required"`
	CountryCode    *string `json:"countryCode,omitempty"`
}

// GeoData carries display coordinates as decimal strings, the way the feed
// sends them.
type GeoData struct {
	DisplayLatitude  string `json:"displayLatitude" validate:"required"`
	DisplayLongitude string `json:"displayLongitude" validate:"required"`
}

// HoursText is the free-form opening hours blurb.
type HoursText struct {
	Display string `json:"display" validate:"required"`
}

// Data is the normalized partner payload persisted with a listing. Treat it
// as immutable once validated; the derived accessors are pure reads.
type Data struct {
	Images         []Image       `json:"images" validate:"dive"`
	Categories     []Category    `json:"categories" validate:"dive"`
	PaymentOptions []string      `json:"payment_options,omitempty"`
	Emails         []Email       `json:"emails" validate:"dive"`
	Videos         []Video       `json:"videos" validate:"dive"`
	URLs           []URL         `json:"urls" validate:"dive"`
	Phones         []Phone       `json:"phones" validate:"dive"`
	SpecialOffer   *SpecialOffer `json:"special_offer,omitempty"`
}

// LogoURL returns the first image tagged LOGO, or empty.
func (d Data) LogoURL() string {
	for _, img := range d.Images {
		if img.Type == "LOGO" {
			return img.URL
		}
	}
	return ""
}

// GalleryImages returns the subset of images tagged GALLERY.
func (d Data) GalleryImages() []Image {
	var gallery []Image
	for _, img := range d.Images {
		if img.Type == "GALLERY" {
			gallery = append(gallery, img)
		}
	}
	return gallery
}

// WebsiteURL returns the first URL whose type or description reads "website",
// case-insensitively. Type wins over description when both are set.
func (d Data) WebsiteURL() string {
	for _, u := range d.URLs {
		kind := ""
		switch {
		case u.Type != nil && *u.Type != "":
			kind = *u.Type
		case u.Description != nil:
			kind = *u.Description
		}
		if strings.EqualFold(kind, "website") {
			return u.URL
		}
	}
	return ""
}

// MainPhone returns the number of the first phone entry tagged MAIN, or empty.
func (d Data) MainPhone() string {
	for _, p := range d.Phones {
		if p.Type == "MAIN" {
			return p.Number.Number
		}
	}
	return ""
}
