package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dealgrid/directory-api/internal/dto"
	"github.com/dealgrid/directory-api/internal/entity"
	"github.com/dealgrid/directory-api/internal/geo"
	"github.com/dealgrid/directory-api/internal/repository"
	"github.com/dealgrid/directory-api/internal/yext"
)

// ListingsService is the reconciliation engine: it merges partner payloads
// into store records and maintains their slug and lifecycle flags.
type ListingsService struct {
	repo    repository.ListingsRepository
	baseURL string
	now     func() time.Time
}

// NewListingsService builds the service. baseURL is the public site base used
// for canonical listing URLs.
func NewListingsService(repo repository.ListingsRepository, baseURL string) *ListingsService {
	return &ListingsService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// CreateListing handles a partner order: validate, reject duplicate partner
// ids, build the record, and persist it with a freshly assigned slug. Nothing
// is written when any rule fails.
func (s *ListingsService) CreateListing(ctx context.Context, req dto.ListingCreateRequest) (*dto.ListingResult, error) {
	if err := yext.CheckStruct(req); err != nil {
		return nil, err
	}

	data := payloadData(req)
	if err := data.ValidateCreate(); err != nil {
		return nil, err
	}

	if req.YextID != "" {
		exists, err := s.repo.YextIDExists(ctx, req.YextID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrDuplicateYextID
		}
	}

	lat, lng, err := parseGeoData(req.GeoData)
	if err != nil {
		return nil, err
	}

	now := s.now()
	listing := &entity.Listing{
		Name:           req.Name,
		Description:    req.Description,
		Phone:          data.MainPhone(),
		YextCanceled:   false,
		YextSuppressed: false,
		Address1:       req.Address.Address,
		Address2:       req.Address.Address2,
		City:           req.Address.City,
		State:          req.Address.State,
		Zip:            req.Address.PostalCode,
		Country:        countryOrDefault(req.Address.CountryCode),
		ShowAddress:    req.Address.Visible,
		Latitude:       lat,
		Longitude:      lng,
		YextData:       &data,
		TwitterHandle:  req.TwitterHandle,
		FacebookURL:    req.FacebookPageURL,
		DateCreated:    now,
		DateUpdated:    now,
		DateDeleted:    nil,
	}
	if req.YextID != "" {
		yextID := req.YextID
		listing.YextID = &yextID
	}
	if website := data.WebsiteURL(); website != "" {
		listing.HomepageURL = &website
	}
	if req.HoursText != nil {
		hours := req.HoursText.Display
		listing.HoursText = &hours
	}

	if err := listing.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, listing)
	if err != nil {
		return nil, err
	}

	return &dto.ListingResult{Status: "LIVE", ID: created.ID, URL: created.URL(s.baseURL)}, nil
}

// UpdateListing merges a partial payload into the stored record. A supplied
// collection replaces its predecessor wholesale; an absent one is kept. The
// slug is regenerated on every update since name/city/zip may have moved.
func (s *ListingsService) UpdateListing(ctx context.Context, id int64, req dto.ListingUpdateRequest) (*dto.ListingResult, error) {
	if err := yext.CheckStruct(req); err != nil {
		return nil, err
	}

	updated, err := s.repo.Mutate(ctx, id, func(l *entity.Listing) (string, error) {
		existing := yext.Data{}
		if l.YextData != nil {
			existing = *l.YextData
		}

		merged := yext.Data{
			Images:         pickImages(req.Images, existing.Images),
			Categories:     pickCategories(req.Categories, existing.Categories),
			PaymentOptions: pickStrings(req.PaymentOptions, existing.PaymentOptions),
			Emails:         pickEmails(req.Emails, existing.Emails),
			Videos:         pickVideos(req.Videos, existing.Videos),
			URLs:           pickURLs(req.URLs, existing.URLs),
			Phones:         pickPhones(req.Phones, existing.Phones),
			SpecialOffer:   existing.SpecialOffer,
		}
		if req.SpecialOffer != nil {
			merged.SpecialOffer = req.SpecialOffer
		}

		if req.Name != nil && *req.Name != "" {
			l.Name = *req.Name
		}
		if req.Description != nil && *req.Description != "" {
			l.Description = *req.Description
		}
		if req.YextID != nil && *req.YextID != "" {
			yextID := *req.YextID
			l.YextID = &yextID
		}
		if req.TwitterHandle != nil {
			l.TwitterHandle = req.TwitterHandle
		}
		if req.FacebookPageURL != nil {
			l.FacebookURL = req.FacebookPageURL
		}

		if req.Address != nil {
			l.Address1 = req.Address.Address
			l.Address2 = req.Address.Address2
			l.City = req.Address.City
			l.State = req.Address.State
			l.Zip = req.Address.PostalCode
			l.Country = countryOrDefault(req.Address.CountryCode)
			l.ShowAddress = req.Address.Visible
		}

		if req.GeoData != nil {
			lat, lng, err := parseGeoData(*req.GeoData)
			if err != nil {
				return "", err
			}
			l.Latitude = lat
			l.Longitude = lng
		}

		l.YextData = &merged
		l.Phone = merged.MainPhone()
		if website := merged.WebsiteURL(); website != "" {
			l.HomepageURL = &website
		}
		if req.HoursText != nil {
			hours := req.HoursText.Display
			l.HoursText = &hours
		}

		l.DateUpdated = s.now()
		// An update revives a soft-deleted listing. Surprising but
		// long-standing partner-facing behavior; do not "fix" silently.
		l.DateDeleted = nil

		if err := l.Validate(); err != nil {
			return "", err
		}
		return l.SlugText(), nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListingResult{Status: "LIVE", ID: updated.ID, URL: updated.URL(s.baseURL)}, nil
}

// SuppressListing marks a listing as superseded by a canonical duplicate, or
// reverses that. Idempotent: re-suppressing just re-applies the same state.
func (s *ListingsService) SuppressListing(ctx context.Context, req dto.SuppressRequest) error {
	_, err := s.repo.Mutate(ctx, int64(req.ListingID), func(l *entity.Listing) (string, error) {
		l.YextSuppressed = req.Suppress
		if req.Suppress {
			deleted := s.now()
			l.DateDeleted = &deleted
			l.CanonicalID = req.CanonicalListingID
		} else {
			l.DateDeleted = nil
			l.CanonicalID = nil
		}
		return "", nil
	})
	return err
}

// DeleteListing is the partner-initiated removal: soft delete plus the
// cancellation flag. Suppression state is left as-is.
func (s *ListingsService) DeleteListing(ctx context.Context, id int64) error {
	_, err := s.repo.Mutate(ctx, id, func(l *entity.Listing) (string, error) {
		deleted := s.now()
		l.DateDeleted = &deleted
		l.YextCanceled = true
		return "", nil
	})
	return err
}

// GetDetails returns the full detail view of one listing, soft-deleted rows
// included.
func (s *ListingsService) GetDetails(ctx context.Context, id int64) (*dto.ListingDetail, error) {
	listing, err := s.repo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	detail := s.listingDetail(listing)
	return &detail, nil
}

// Search applies the supplied criteria conjunctively. The geo criterion
// prefilters on the bounding box in SQL and re-applies the rectangle
// containment here on the exact coordinates. No criteria means no results.
func (s *ListingsService) Search(ctx context.Context, params dto.SearchParams) ([]dto.ListingDetail, error) {
	details := make([]dto.ListingDetail, 0)
	if !params.HasCriteria() {
		return details, nil
	}

	filter := repository.SearchFilter{
		Phone:      params.Phone,
		Country:    params.CountryCode,
		NamePrefix: params.NamePrefix,
	}

	geoFiltered := params.Latitude != nil && params.Longitude != nil
	if geoFiltered {
		bbox := geo.Bounds(*params.Latitude, *params.Longitude, params.RadiusMiles)
		filter.BBox = &bbox
	}

	listings, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range listings {
		l := &listings[i]
		if geoFiltered {
			if l.Latitude == nil || l.Longitude == nil {
				continue
			}
			if !geo.WithinRadius(*l.Latitude, *l.Longitude, *params.Latitude, *params.Longitude, params.RadiusMiles) {
				continue
			}
		}
		details = append(details, s.listingDetail(l))
	}

	return details, nil
}

// ListListings returns listings for the operator surface.
func (s *ListingsService) ListListings(ctx context.Context, includeDeleted bool) ([]entity.Listing, error) {
	return s.repo.List(ctx, includeDeleted)
}

// GetListing fetches one listing for the operator surface.
func (s *ListingsService) GetListing(ctx context.Context, id int64, includeDeleted bool) (*entity.Listing, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *ListingsService) listingDetail(l *entity.Listing) dto.ListingDetail {
	categories := l.Categories()
	if categories == nil {
		categories = []yext.Category{}
	}
	return dto.ListingDetail{
		ID:          l.ID,
		Status:      string(l.Status()),
		Name:        l.Name,
		Address:     l.Address1,
		Address2:    l.Address2,
		City:        l.City,
		State:       l.State,
		Zip:         l.Zip,
		CountryCode: l.Country,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Phone:       l.Phone,
		URL:         l.URL(s.baseURL),
		Categories:  categories,
		WebsiteURL:  l.HomepageURL,
		Description: l.Description,
		Type:        "Location",
	}
}

func payloadData(req dto.ListingCreateRequest) yext.Data {
	return yext.Data{
		Images:         req.Images,
		Categories:     req.Categories,
		PaymentOptions: req.PaymentOptions,
		Emails:         req.Emails,
		Videos:         req.Videos,
		URLs:           req.URLs,
		Phones:         req.Phones,
		SpecialOffer:   req.SpecialOffer,
	}
}

func parseGeoData(g yext.GeoData) (*float64, *float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(g.DisplayLatitude), 64)
	if err != nil {
		return nil, nil, yext.NewValidationError("geoData.displayLatitude", "must be a decimal number")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(g.DisplayLongitude), 64)
	if err != nil {
		return nil, nil, yext.NewValidationError("geoData.displayLongitude", "must be a decimal number")
	}
	return &lat, &lng, nil
}

func countryOrDefault(code *string) string {
	if code != nil && *code != "" {
		return *code
	}
	return "US"
}

// The pick helpers implement the wholesale-replacement merge rule: a
// non-empty incoming collection wins, anything else keeps the stored one.

func pickImages(incoming, existing []yext.Image) []yext.Image {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickCategories(incoming, existing []yext.Category) []yext.Category {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickStrings(incoming, existing []string) []string {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickEmails(incoming, existing []yext.Email) []yext.Email {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickVideos(incoming, existing []yext.Video) []yext.Video {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickURLs(incoming, existing []yext.URL) []yext.URL {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func pickPhones(incoming, existing []yext.Phone) []yext.Phone {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

// CSVValidationError indicates that an operator-supplied CSV is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// UploadSummary reports how many rows were imported.
type UploadSummary struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}

var requiredCSVHeaders = []string{"name", "address1", "city", "state", "zip", "phone"}

var optionalCSVHeaders = []string{"address2", "country", "description", "homepage_url", "latitude", "longitude"}

// ImportListingsCSV bulk-creates listings from an operator-uploaded CSV.
// Each row goes through the same slug assignment as a partner create.
func (s *ListingsService) ImportListingsCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	index, valErr := buildListingHeaderIndex(header)
	if valErr != nil {
		return UploadSummary{}, valErr
	}

	summary := UploadSummary{}
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		if cell("name") == "" || cell("address1") == "" {
			continue
		}

		now := s.now()
		listing := &entity.Listing{
			Name:        cell("name"),
			Description: cell("description"),
			Address1:    cell("address1"),
			Address2:    optionalCell(cell("address2")),
			City:        cell("city"),
			State:       cell("state"),
			Zip:         cell("zip"),
			Phone:       cell("phone"),
			Country:     countryOrDefault(optionalCell(cell("country"))),
			HomepageURL: optionalCell(cell("homepage_url")),
			DateCreated: now,
			DateUpdated: now,
		}

		if lat := cell("latitude"); lat != "" {
			parsed, err := strconv.ParseFloat(lat, 64)
			if err != nil {
				return summary, CSVValidationError{Message: fmt.Sprintf("invalid latitude on row %d", rowNum)}
			}
			listing.Latitude = &parsed
		}
		if lng := cell("longitude"); lng != "" {
			parsed, err := strconv.ParseFloat(lng, 64)
			if err != nil {
				return summary, CSVValidationError{Message: fmt.Sprintf("invalid longitude on row %d", rowNum)}
			}
			listing.Longitude = &parsed
		}

		if err := listing.Validate(); err != nil {
			return summary, CSVValidationError{Message: fmt.Sprintf("row %d: %v", rowNum, err)}
		}

		if _, err := s.repo.Insert(ctx, listing); err != nil {
			return summary, fmt.Errorf("import row %d: %w", rowNum, err)
		}
		summary.Inserted++
		summary.Total++
	}

	return summary, nil
}

func buildListingHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func optionalCell(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
