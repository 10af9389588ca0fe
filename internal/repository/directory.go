package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealgrid/directory-api/internal/entity"
)

// Sentinel errors for directory lookups.
var (
	ErrCityNotFound = errors.New("city not found")
	ErrPageNotFound = errors.New("page not found")
)

// DirectoryRepository declares read operations for the directory entities the
// rendering layer consumes.
type DirectoryRepository interface {
	ListCities(ctx context.Context) ([]entity.City, error)
	GetCityBySlug(ctx context.Context, slug string) (*entity.City, error)
	GetPageByPath(ctx context.Context, path string) (*entity.Page, error)
}

// PGXDirectoryRepository implements DirectoryRepository with pgx.
type PGXDirectoryRepository struct {
	pool pgxPool
}

// NewPGXDirectoryRepository wires a pgx backed directory repository.
func NewPGXDirectoryRepository(pool *pgxpool.Pool) *PGXDirectoryRepository {
	return &PGXDirectoryRepository{pool: pool}
}

const cityColumns = `id, slug, name, state, zip, county, state_code, country_code, latitude, longitude, date_created, date_updated`

// ListCities returns every city, alphabetically.
func (r *PGXDirectoryRepository) ListCities(ctx context.Context) ([]entity.City, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM cities ORDER BY name`, cityColumns))
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []entity.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan city row: %w", err)
		}
		cities = append(cities, *city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

// GetCityBySlug fetches one city by its slug.
func (r *PGXDirectoryRepository) GetCityBySlug(ctx context.Context, slug string) (*entity.City, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM cities WHERE slug = $1`, cityColumns), slug)
	city, err := scanCity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("query city by slug: %w", err)
	}
	return city, nil
}

// GetPageByPath fetches one editorial page by its path.
func (r *PGXDirectoryRepository) GetPageByPath(ctx context.Context, path string) (*entity.Page, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, path, title, meta_keywords, meta_description, content, canonical_url
        FROM pages WHERE path = $1
    `, path)

	var (
		p               entity.Page
		title           sql.NullString
		metaKeywords    sql.NullString
		metaDescription sql.NullString
		content         sql.NullString
		canonicalURL    sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Path, &title, &metaKeywords, &metaDescription, &content, &canonicalURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("query page by path: %w", err)
	}
	p.Title = title.String
	p.MetaKeywords = metaKeywords.String
	p.MetaDescription = metaDescription.String
	p.Content = content.String
	p.CanonicalURL = canonicalURL.String

	return &p, nil
}

func scanCity(row rowScanner) (*entity.City, error) {
	var (
		c         entity.City
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.State, &c.Zip, &c.County,
		&c.StateCode, &c.CountryCode, &latitude, &longitude, &c.DateCreated, &c.DateUpdated)
	if err != nil {
		return nil, err
	}
	if latitude.Valid {
		c.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		c.Longitude = &longitude.Float64
	}
	return &c, nil
}
