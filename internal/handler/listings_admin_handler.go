package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dealgrid/directory-api/internal/dto"
	"github.com/dealgrid/directory-api/internal/repository"
	"github.com/dealgrid/directory-api/internal/service"
	"github.com/dealgrid/directory-api/internal/yext"
)

// ListingsAdminHandler exposes the operator surface for listings.
type ListingsAdminHandler struct {
	service *service.ListingsService
}

// NewListingsAdminHandler creates a new handler instance.
func NewListingsAdminHandler(service *service.ListingsService) *ListingsAdminHandler {
	return &ListingsAdminHandler{service: service}
}

// List handles GET /admin/listings requests.
func (h *ListingsAdminHandler) List(c echo.Context) error {
	includeDeleted := c.QueryParam("include_deleted") == "true"

	listings, err := h.service.ListListings(c.Request().Context(), includeDeleted)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list listings")
	}
	return Success(c, http.StatusOK, "listings retrieved", listings)
}

// Get handles GET /admin/listings/:id requests.
func (h *ListingsAdminHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid listing id")
	}

	listing, err := h.service.GetListing(c.Request().Context(), id, true)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return Error(c, http.StatusNotFound, "listing not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load listing")
	}
	return Success(c, http.StatusOK, "listing retrieved", listing)
}

// Create handles POST /admin/listings requests: an operator create with the
// same payload shape and validation as a partner order.
func (h *ListingsAdminHandler) Create(c echo.Context) error {
	var req dto.ListingCreateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "malformed request body")
	}

	result, err := h.service.CreateListing(c.Request().Context(), req)
	if err != nil {
		var valErr *yext.ValidationError
		switch {
		case errors.As(err, &valErr):
			return Error(c, http.StatusBadRequest, valErr.Error())
		case errors.Is(err, repository.ErrDuplicateYextID):
			return Error(c, http.StatusBadRequest, "listing with yextId already exists")
		default:
			return Error(c, http.StatusInternalServerError, "failed to create listing")
		}
	}
	return Success(c, http.StatusCreated, "listing created", result)
}
