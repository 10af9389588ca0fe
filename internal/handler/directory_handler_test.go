package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dealgrid/directory-api/internal/entity"
	"github.com/dealgrid/directory-api/internal/repository"
)

type stubDirectoryRepo struct {
	cities map[string]entity.City
	pages  map[string]entity.Page
	err    error
}

func (s *stubDirectoryRepo) ListCities(ctx context.Context) ([]entity.City, error) {
	if s.err != nil {
		return nil, s.err
	}
	cities := make([]entity.City, 0, len(s.cities))
	for _, c := range s.cities {
		cities = append(cities, c)
	}
	return cities, nil
}

func (s *stubDirectoryRepo) GetCityBySlug(ctx context.Context, slug string) (*entity.City, error) {
	if s.err != nil {
		return nil, s.err
	}
	if city, ok := s.cities[slug]; ok {
		return &city, nil
	}
	return nil, repository.ErrCityNotFound
}

func (s *stubDirectoryRepo) GetPageByPath(ctx context.Context, path string) (*entity.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	if page, ok := s.pages[path]; ok {
		return &page, nil
	}
	return nil, repository.ErrPageNotFound
}

func TestDirectoryHandler_ListCities(t *testing.T) {
	repo := &stubDirectoryRepo{cities: map[string]entity.City{
		"queens-ny": {Slug: "queens-ny", Name: "Queens"},
	}}
	handler := NewDirectoryHandler(repo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cities", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.ListCities(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "success" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDirectoryHandler_GetCity_NotFound(t *testing.T) {
	handler := NewDirectoryHandler(&stubDirectoryRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cities/nowhere", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("nowhere")

	_ = handler.GetCity(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDirectoryHandler_GetPage(t *testing.T) {
	repo := &stubDirectoryRepo{pages: map[string]entity.Page{
		"/about": {Path: "/about", Title: "About"},
	}}
	handler := NewDirectoryHandler(repo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/pages?path=/about", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetPage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDirectoryHandler_GetPage_MissingPath(t *testing.T) {
	handler := NewDirectoryHandler(&stubDirectoryRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.GetPage(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
