package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dealgrid/directory-api/internal/dto"
	"github.com/dealgrid/directory-api/internal/repository"
	"github.com/dealgrid/directory-api/internal/service"
	"github.com/dealgrid/directory-api/internal/yext"
)

// YextHandler exposes the partner-facing powerlistings endpoints. The wire
// format here is the partner's contract, not the internal API envelope: do
// not change the response shapes without coordinating with the feed.
type YextHandler struct {
	service *service.ListingsService
}

// NewYextHandler creates a new handler instance.
func NewYextHandler(service *service.ListingsService) *YextHandler {
	return &YextHandler{service: service}
}

type rejectionIssue struct {
	Description string `json:"description"`
	Field       string `json:"field"`
}

type rejectionResponse struct {
	Status string           `json:"status"`
	Issues []rejectionIssue `json:"issues"`
}

type partnerErrorMessage struct {
	Message string `json:"message"`
}

type partnerErrorResponse struct {
	Error partnerErrorMessage `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func rejected(c echo.Context, issues ...rejectionIssue) error {
	return c.JSON(http.StatusConflict, rejectionResponse{Status: "REJECTED", Issues: issues})
}

func partnerError(c echo.Context, status int, message string) error {
	return c.JSON(status, partnerErrorResponse{Error: partnerErrorMessage{Message: message}})
}

// mapPartnerError translates service failures into the partner wire format.
// Unknown errors pass their raw message through; documented existing behavior.
func mapPartnerError(c echo.Context, err error) error {
	var valErr *yext.ValidationError
	switch {
	case errors.As(err, &valErr):
		return rejected(c, rejectionIssue{Description: valErr.Message, Field: valErr.Field})
	case errors.Is(err, repository.ErrListingNotFound):
		return partnerError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrDuplicateYextID):
		return partnerError(c, http.StatusBadRequest, "Listing with yextId already exists.")
	default:
		return partnerError(c, http.StatusInternalServerError, err.Error())
	}
}

// CreateOrder handles POST /powerlistings/order requests.
func (h *YextHandler) CreateOrder(c echo.Context) error {
	var req dto.ListingCreateRequest
	if err := c.Bind(&req); err != nil {
		return rejected(c, rejectionIssue{Description: "malformed request body", Field: "body"})
	}

	result, err := h.service.CreateListing(c.Request().Context(), req)
	if err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// rejectListingID is the response for a non-numeric :listingId path segment.
// That is a request-validation failure and uses the rejection shape, like any
// other malformed field.
func rejectListingID(c echo.Context) error {
	return rejected(c, rejectionIssue{Description: "value is not a valid integer", Field: "listingId"})
}

// Update handles PUT /powerlistings/:listingId requests.
func (h *YextHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil {
		return rejectListingID(c)
	}

	var req dto.ListingUpdateRequest
	if err := c.Bind(&req); err != nil {
		return rejected(c, rejectionIssue{Description: "malformed request body", Field: "body"})
	}

	result, err := h.service.UpdateListing(c.Request().Context(), id, req)
	if err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /powerlistings/:listingId requests.
func (h *YextHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil {
		return rejectListingID(c)
	}

	if err := h.service.DeleteListing(c.Request().Context(), id); err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Suppress handles POST /powerlistings/suppress requests.
func (h *YextHandler) Suppress(c echo.Context) error {
	var req dto.SuppressRequest
	if err := c.Bind(&req); err != nil {
		return rejected(c, rejectionIssue{Description: "malformed request body", Field: "body"})
	}

	if err := h.service.SuppressListing(c.Request().Context(), req); err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Details handles GET /details?storeID= requests.
func (h *YextHandler) Details(c echo.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.QueryParam("storeID")), 10, 64)
	if err != nil {
		return rejected(c, rejectionIssue{Description: "storeID must be an integer", Field: "storeID"})
	}

	detail, err := h.service.GetDetails(c.Request().Context(), id)
	if err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Search handles GET /search requests. Criteria are conjunctive; the radius
// is fixed at 10 miles when latlng is supplied.
func (h *YextHandler) Search(c echo.Context) error {
	params := dto.SearchParams{
		Phone:       strings.TrimSpace(c.QueryParam("phone")),
		CountryCode: strings.TrimSpace(c.QueryParam("country_code")),
		NamePrefix:  c.QueryParam("name"),
	}

	if latlng := strings.TrimSpace(c.QueryParam("latlng")); latlng != "" {
		parts := strings.SplitN(latlng, ",", 2)
		if len(parts) != 2 {
			return partnerError(c, http.StatusInternalServerError, "latlng must be lat,lng")
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr != nil || lngErr != nil {
			return partnerError(c, http.StatusInternalServerError, "latlng must be lat,lng")
		}
		params.Latitude = &lat
		params.Longitude = &lng
		params.RadiusMiles = 10
	}

	details, err := h.service.Search(c.Request().Context(), params)
	if err != nil {
		return mapPartnerError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// HealthCheck handles GET /health_check requests. With ?_debug set it echoes
// the request headers back, which is occasionally needed to diagnose what the
// partner's proxy actually sends.
func (h *YextHandler) HealthCheck(c echo.Context) error {
	body := map[string]any{
		"status":  "ok",
		"headers": nil,
	}
	if c.QueryParam("_debug") != "" {
		body["headers"] = c.Request().Header
	}
	return c.JSON(http.StatusOK, body)
}
