package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dealgrid/directory-api/internal/repository"
)

// DirectoryHandler exposes the read-only directory data the rendering layer
// consumes: cities and editorial pages.
type DirectoryHandler struct {
	repo repository.DirectoryRepository
}

// NewDirectoryHandler creates a new handler instance.
func NewDirectoryHandler(repo repository.DirectoryRepository) *DirectoryHandler {
	return &DirectoryHandler{repo: repo}
}

// ListCities handles GET /cities requests.
func (h *DirectoryHandler) ListCities(c echo.Context) error {
	cities, err := h.repo.ListCities(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list cities")
	}
	return Success(c, http.StatusOK, "cities retrieved", cities)
}

// GetCity handles GET /cities/:slug requests.
func (h *DirectoryHandler) GetCity(c echo.Context) error {
	city, err := h.repo.GetCityBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return Error(c, http.StatusNotFound, "city not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load city")
	}
	return Success(c, http.StatusOK, "city retrieved", city)
}

// GetPage handles GET /pages?path= requests.
func (h *DirectoryHandler) GetPage(c echo.Context) error {
	path := strings.TrimSpace(c.QueryParam("path"))
	if path == "" {
		return Error(c, http.StatusBadRequest, "path is required")
	}

	page, err := h.repo.GetPageByPath(c.Request().Context(), path)
	if err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return Error(c, http.StatusNotFound, "page not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load page")
	}
	return Success(c, http.StatusOK, "page retrieved", page)
}
