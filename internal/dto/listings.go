package dto

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dealgrid/directory-api/internal/yext"
)

// ListingCreateRequest is the partner's powerlistings order payload.
type ListingCreateRequest struct {
	YextID          string             `json:"yextId"`
	PartnerID       *string            `json:"partnerId,omitempty"`
	Name            string             `json:"name" validate:"required"`
	Address         yext.Address       `json:"address" validate:"required"`
	Phones          []yext.Phone       `json:"phones" validate:"dive"`
	Categories      []yext.Category    `json:"categories" validate:"dive"`
	Description     string             `json:"description"`
	Emails          []yext.Email       `json:"emails" validate:"dive"`
	GeoData         yext.GeoData       `json:"geoData" validate:"required"`
	Images          []yext.Image       `json:"images" validate:"dive"`
	SpecialOffer    *yext.SpecialOffer `json:"specialOffer,omitempty"`
	URLs            []yext.URL         `json:"urls" validate:"dive"`
	Videos          []yext.Video       `json:"videos" validate:"dive"`
	PaymentOptions  []string           `json:"paymentOptions"`
	TwitterHandle   *string            `json:"twitterHandle,omitempty"`
	FacebookPageURL *string            `json:"facebookPageUrl,omitempty"`
	HoursText       *yext.HoursText    `json:"hoursText,omitempty"`
}

// ListingUpdateRequest is the partial update payload. Absent fields leave the
// stored value untouched; a present collection replaces its predecessor
// wholesale.
type ListingUpdateRequest struct {
	YextID          *string            `json:"yextId,omitempty"`
	PartnerID       *string            `json:"partnerId,omitempty"`
	Name            *string            `json:"name,omitempty"`
	Address         *yext.Address      `json:"address,omitempty"`
	Phones          []yext.Phone       `json:"phones,omitempty" validate:"dive"`
	Categories      []yext.Category    `json:"categories,omitempty" validate:"dive"`
	Description     *string            `json:"description,omitempty"`
	Emails          []yext.Email       `json:"emails,omitempty" validate:"dive"`
	GeoData         *yext.GeoData      `json:"geoData,omitempty"`
	Images          []yext.Image       `json:"images,omitempty" validate:"dive"`
	SpecialOffer    *yext.SpecialOffer `json:"specialOffer,omitempty"`
	URLs            []yext.URL         `json:"urls,omitempty" validate:"dive"`
	Videos          []yext.Video       `json:"videos,omitempty" validate:"dive"`
	PaymentOptions  []string           `json:"paymentOptions,omitempty"`
	TwitterHandle   *string            `json:"twitterHandle,omitempty"`
	FacebookPageURL *string            `json:"facebookPageUrl,omitempty"`
	HoursText       *yext.HoursText    `json:"hoursText,omitempty"`
}

// ListingID is a numeric listing identifier that some partner feeds send as a
// quoted string. Both shapes decode to the same value.
type ListingID int64

// UnmarshalJSON accepts 42 and "42" alike.
func (id *ListingID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("listingId %q is not an integer", raw)
		}
		*id = ListingID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ListingID(n)
	return nil
}

// SuppressRequest marks a listing as superseded by a canonical duplicate, or
// reverses that.
type SuppressRequest struct {
	ListingID          ListingID `json:"listingId"`
	Suppress           bool      `json:"suppress"`
	CanonicalListingID *int64    `json:"canonicalListingId,omitempty"`
}

// ListingResult is the envelope returned for successful create/update calls.
type ListingResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
	URL    string `json:"url"`
}

// ListingDetail is the full detail object exposed on /details and /search.
type ListingDetail struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Address2    *string         `json:"address2"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	Zip         string          `json:"zip"`
	CountryCode string          `json:"countryCode"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Phone       string          `json:"phone"`
	URL         string          `json:"url"`
	Categories  []yext.Category `json:"categories"`
	WebsiteURL  *string         `json:"websiteUrl"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
}

// SearchParams carries the optional, conjunctive search criteria.
type SearchParams struct {
	Phone       string
	CountryCode string
	NamePrefix  string
	Latitude    *float64
	Longitude   *float64
	RadiusMiles float64
}

// HasCriteria reports whether any filter was supplied; a bare search returns
// nothing rather than the whole table.
func (p SearchParams) HasCriteria() bool {
	return p.Phone != "" || p.CountryCode != "" || p.NamePrefix != "" || (p.Latitude != nil && p.Longitude != nil)
}
