package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealgrid/directory-api/internal/entity"
	"github.com/dealgrid/directory-api/internal/geo"
	"github.com/dealgrid/directory-api/internal/slug"
	"github.com/dealgrid/directory-api/internal/yext"
)

// Sentinel errors surfaced by the listings repository.
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrDuplicateYextID = errors.New("listing with yextId already exists")
)

// SearchFilter describes the conjunctive criteria for listing search.
// Soft-deleted rows are not excluded, matching the partner search contract.
type SearchFilter struct {
	Phone      string
	Country    string
	NamePrefix string
	BBox       *geo.BoundingBox
	Limit      int
}

// ListingsRepository declares persistence operations for listings. Insert and
// Mutate are transactional: the slug probe and the row write happen inside
// one transaction so concurrent writers cannot race an "available" slug.
type ListingsRepository interface {
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*entity.Listing, error)
	YextIDExists(ctx context.Context, yextID string) (bool, error)
	List(ctx context.Context, includeDeleted bool) ([]entity.Listing, error)
	Search(ctx context.Context, filter SearchFilter) ([]entity.Listing, error)
	Insert(ctx context.Context, listing *entity.Listing) (*entity.Listing, error)
	Mutate(ctx context.Context, id int64, apply func(l *entity.Listing) (slugText string, err error)) (*entity.Listing, error)
}

// PGXListingsRepository implements ListingsRepository with pgx.
type PGXListingsRepository struct {
	pool pgxPool
}

// NewPGXListingsRepository wires a pgx backed listings repository.
func NewPGXListingsRepository(pool *pgxpool.Pool) *PGXListingsRepository {
	return &PGXListingsRepository{pool: pool}
}

const listingColumns = `id, canonical_id, name, description, slug, address1, address2, city, state, zip,
        phone, country, homepage_url, facebook_url, twitter_handle, hours_text,
        yext_id, yext_canceled, yext_suppressed, show_address, image_url,
        latitude, longitude, yext_data, date_created, date_updated, date_deleted`

// GetByID fetches one listing. With includeDeleted=false, soft-deleted rows
// behave as absent.
func (r *PGXListingsRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*entity.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM local_stores WHERE id = $1`, listingColumns)
	if !includeDeleted {
		query += ` AND date_deleted IS NULL`
	}

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("query listing by id: %w", err)
	}
	return listing, nil
}

// YextIDExists reports whether any row, deleted or not, carries the partner id.
func (r *PGXListingsRepository) YextIDExists(ctx context.Context, yextID string) (bool, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(1) FROM local_stores WHERE yext_id = $1`, yextID).Scan(&count); err != nil {
		return false, fmt.Errorf("count listings by yext_id: %w", err)
	}
	return count > 0, nil
}

// List returns listings ordered by creation date (desc), for the operator
// surface.
func (r *PGXListingsRepository) List(ctx context.Context, includeDeleted bool) ([]entity.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM local_stores`, listingColumns)
	if !includeDeleted {
		query += ` WHERE date_deleted IS NULL`
	}
	query += ` ORDER BY date_created DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// Search applies whichever filters are set, ANDed together. Results carry no
// defined ordering; callers must not rely on a stable order across calls.
func (r *PGXListingsRepository) Search(ctx context.Context, filter SearchFilter) ([]entity.Listing, error) {
	clauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	if filter.Phone != "" {
		clauses = append(clauses, fmt.Sprintf("phone = $%d", idx))
		args = append(args, filter.Phone)
		idx++
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("country = $%d", idx))
		args = append(args, filter.Country)
		idx++
	}
	if filter.NamePrefix != "" {
		clauses = append(clauses, fmt.Sprintf("name LIKE $%d || '%%'", idx))
		args = append(args, filter.NamePrefix)
		idx++
	}
	if filter.BBox != nil {
		clauses = append(clauses, fmt.Sprintf("latitude BETWEEN $%d AND $%d", idx, idx+1))
		args = append(args, filter.BBox.MinLat, filter.BBox.MaxLat)
		idx += 2
		clauses = append(clauses, fmt.Sprintf("longitude BETWEEN $%d AND $%d", idx, idx+1))
		args = append(args, filter.BBox.MinLng, filter.BBox.MaxLng)
		idx += 2
	}

	if len(clauses) == 0 {
		return nil, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 30
	}

	query := fmt.Sprintf(`SELECT %s FROM local_stores WHERE %s LIMIT $%d`,
		listingColumns, strings.Join(clauses, " AND "), idx)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// Insert persists a new listing, assigning its slug inside the same
// transaction as the write. The derived point geometry is computed from
// lat/lng in SQL so it can never drift from the coordinate pair.
func (r *PGXListingsRepository) Insert(ctx context.Context, listing *entity.Listing) (*entity.Listing, error) {
	if listing == nil {
		return nil, fmt.Errorf("listing payload is nil")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	assigned, err := slug.Generate(listing.SlugText(), slugTaken(ctx, tx, 0))
	if err != nil {
		return nil, err
	}
	listing.Slug = assigned

	rawYext, err := marshalYextData(listing.YextData)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO local_stores (
            canonical_id, name, description, slug, address1, address2, city, state, zip,
            phone, country, homepage_url, facebook_url, twitter_handle, hours_text,
            yext_id, yext_canceled, yext_suppressed, show_address, image_url,
            latitude, longitude, location, yext_data, date_created, date_updated, date_deleted
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9,
            $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20,
            $21, $22,
            CASE WHEN $21::numeric IS NOT NULL AND $22::numeric IS NOT NULL THEN
                ST_SetSRID(ST_MakePoint($22::float8, $21::float8), 4326)
            ELSE NULL END,
            $23, $24, $25, $26
        )
        RETURNING id
    `

	err = tx.QueryRow(ctx, query,
		listing.CanonicalID,
		listing.Name,
		listing.Description,
		listing.Slug,
		listing.Address1,
		listing.Address2,
		listing.City,
		listing.State,
		listing.Zip,
		listing.Phone,
		listing.Country,
		listing.HomepageURL,
		listing.FacebookURL,
		listing.TwitterHandle,
		listing.HoursText,
		listing.YextID,
		listing.YextCanceled,
		listing.YextSuppressed,
		listing.ShowAddress,
		listing.ImageURL,
		listing.Latitude,
		listing.Longitude,
		rawYext,
		listing.DateCreated,
		listing.DateUpdated,
		listing.DateDeleted,
	).Scan(&listing.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "yext_id") {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateYextID, pgErr)
		}
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return listing, nil
}

// Mutate runs a read-modify-write cycle on one listing under a row lock, so
// concurrent updates to the same id serialize instead of losing writes. The
// row is fetched regardless of deletion state. apply may return a non-empty
// slugText to have the slug regenerated inside the same transaction.
func (r *PGXListingsRepository) Mutate(ctx context.Context, id int64, apply func(l *entity.Listing) (string, error)) (*entity.Listing, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start mutate tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`SELECT %s FROM local_stores WHERE id = $1 FOR UPDATE`, listingColumns)
	listing, err := scanListing(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("lock listing: %w", err)
	}

	slugText, err := apply(listing)
	if err != nil {
		return nil, err
	}

	if slugText != "" {
		assigned, err := slug.Generate(slugText, slugTaken(ctx, tx, id))
		if err != nil {
			return nil, err
		}
		listing.Slug = assigned
	}

	rawYext, err := marshalYextData(listing.YextData)
	if err != nil {
		return nil, err
	}

	update := `
        UPDATE local_stores SET
            canonical_id = $2, name = $3, description = $4, slug = $5, address1 = $6,
            address2 = $7, city = $8, state = $9, zip = $10, phone = $11, country = $12,
            homepage_url = $13, facebook_url = $14, twitter_handle = $15, hours_text = $16,
            yext_id = $17, yext_canceled = $18, yext_suppressed = $19, show_address = $20,
            image_url = $21, latitude = $22, longitude = $23,
            location = CASE WHEN $22::numeric IS NOT NULL AND $23::numeric IS NOT NULL THEN
                ST_SetSRID(ST_MakePoint($23::float8, $22::float8), 4326)
            ELSE NULL END,
            yext_data = $24, date_updated = $25, date_deleted = $26
        WHERE id = $1
    `

	_, err = tx.Exec(ctx, update,
		listing.ID,
		listing.CanonicalID,
		listing.Name,
		listing.Description,
		listing.Slug,
		listing.Address1,
		listing.Address2,
		listing.City,
		listing.State,
		listing.Zip,
		listing.Phone,
		listing.Country,
		listing.HomepageURL,
		listing.FacebookURL,
		listing.TwitterHandle,
		listing.HoursText,
		listing.YextID,
		listing.YextCanceled,
		listing.YextSuppressed,
		listing.ShowAddress,
		listing.ImageURL,
		listing.Latitude,
		listing.Longitude,
		rawYext,
		listing.DateUpdated,
		listing.DateDeleted,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "yext_id") {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateYextID, pgErr)
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return listing, nil
}

// slugTaken probes slug availability within tx. Soft-deleted rows still
// occupy their slug; only the record's own id is excluded.
func slugTaken(ctx context.Context, tx pgx.Tx, excludeID int64) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		var count int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(1) FROM local_stores WHERE slug = $1 AND id <> $2`,
			candidate, excludeID,
		).Scan(&count)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}
}

func marshalYextData(data *yext.Data) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode yext data: %w", err)
	}
	return raw, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func scanListing(row rowScanner) (*entity.Listing, error) {
	var (
		l             entity.Listing
		canonicalID   sql.NullInt64
		address2      sql.NullString
		homepageURL   sql.NullString
		facebookURL   sql.NullString
		twitterHandle sql.NullString
		hoursText     sql.NullString
		yextID        sql.NullString
		imageURL      sql.NullString
		latitude      sql.NullFloat64
		longitude     sql.NullFloat64
		rawYext       []byte
		dateDeleted   sql.NullTime
	)

	err := row.Scan(
		&l.ID,
		&canonicalID,
		&l.Name,
		&l.Description,
		&l.Slug,
		&l.Address1,
		&address2,
		&l.City,
		&l.State,
		&l.Zip,
		&l.Phone,
		&l.Country,
		&homepageURL,
		&facebookURL,
		&twitterHandle,
		&hoursText,
		&yextID,
		&l.YextCanceled,
		&l.YextSuppressed,
		&l.ShowAddress,
		&imageURL,
		&latitude,
		&longitude,
		&rawYext,
		&l.DateCreated,
		&l.DateUpdated,
		&dateDeleted,
	)
	if err != nil {
		return nil, err
	}

	if canonicalID.Valid {
		l.CanonicalID = &canonicalID.Int64
	}
	l.Address2 = nullStr(address2)
	l.HomepageURL = nullStr(homepageURL)
	l.FacebookURL = nullStr(facebookURL)
	l.TwitterHandle = nullStr(twitterHandle)
	l.HoursText = nullStr(hoursText)
	l.YextID = nullStr(yextID)
	l.ImageURL = nullStr(imageURL)
	if latitude.Valid {
		l.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		l.Longitude = &longitude.Float64
	}
	if len(rawYext) > 0 {
		var data yext.Data
		if err := json.Unmarshal(rawYext, &data); err != nil {
			return nil, fmt.Errorf("decode yext data: %w", err)
		}
		l.YextData = &data
	}
	if dateDeleted.Valid {
		deleted := dateDeleted.Time
		l.DateDeleted = &deleted
	}

	return &l, nil
}

func scanListings(rows pgx.Rows) ([]entity.Listing, error) {
	var listings []entity.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}
