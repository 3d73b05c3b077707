package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	"github.com/kelderman/wine_cellar_app/internal/models"
	"github.com/kelderman/wine_cellar_app/internal/utils/mapping"
)

type PgxLocationRepository struct {
	BaseRepository
}

// newPgxLocationRepository creates a new repository for locations and bins.
func newPgxLocationRepository(pool *pgxpool.Pool) portsrepo.LocationRepository {
	return &PgxLocationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LocationRepository = (*PgxLocationRepository)(nil)

const locationColumns = `location_id, name, description, created_at, created_by, last_updated_at, last_updated_by`

func scanLocationRow(row pgx.Row) (models.Location, error) {
	var l models.Location
	err := row.Scan(
		&l.LocationID,
		&l.Name,
		&l.Description,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	return l, err
}

const binColumns = `bin_id, location_id, code, capacity, created_at, created_by, last_updated_at, last_updated_by`

func scanBinRow(row pgx.Row) (models.Bin, error) {
	var b models.Bin
	err := row.Scan(
		&b.BinID,
		&b.LocationID,
		&b.Code,
		&b.Capacity,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	return b, err
}

// SaveLocation inserts a location.
func (r *PgxLocationRepository) SaveLocation(ctx context.Context, location domain.Location) error {
	m := mapping.ToModelLocation(location)
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LocationID,
		m.Name,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert location "+m.LocationID, err)
	}
	return nil
}

// FindLocationByID retrieves a location with its bins.
func (r *PgxLocationRepository) FindLocationByID(ctx context.Context, locationID string) (*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE location_id = $1;`
	m, err := scanLocationRow(r.Pool.QueryRow(ctx, query, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find location by ID "+locationID, err)
	}
	location := mapping.ToDomainLocation(m)
	bins, err := r.ListBinsByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	location.Bins = bins
	return &location, nil
}

// ListLocations retrieves all locations ordered by name, headers only.
func (r *PgxLocationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query locations", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		m, err := scanLocationRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan location row", err)
		}
		locations = append(locations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating location rows", err)
	}
	return mapping.ToDomainLocationSlice(locations), nil
}

// UpdateLocation rewrites a location's mutable fields.
func (r *PgxLocationRepository) UpdateLocation(ctx context.Context, location domain.Location) error {
	m := mapping.ToModelLocation(location)
	query := `
		UPDATE locations SET
			name = $2,
			description = $3,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE location_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, m.LocationID, m.Name, m.Description, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update location "+m.LocationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteLocation removes a location and its bins. Callers check for stock first.
func (r *PgxLocationRepository) DeleteLocation(ctx context.Context, locationID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM bins WHERE location_id = $1;`, locationID); err != nil {
		return apperrors.NewAppError(500, "failed to delete bins of location "+locationID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM locations WHERE location_id = $1;`, locationID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete location "+locationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}

// HasStock reports whether any projection row references the location.
func (r *PgxLocationRepository) HasStock(ctx context.Context, locationID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cellar_stock WHERE location_id = $1);`, locationID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check stock at location "+locationID, err)
	}
	return exists, nil
}

// SaveBin inserts a bin. A duplicate code within the location surfaces as
// apperrors.ErrDuplicate.
func (r *PgxLocationRepository) SaveBin(ctx context.Context, bin domain.Bin) error {
	m := mapping.ToModelBin(bin)
	query := `
		INSERT INTO bins (` + binColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BinID,
		m.LocationID,
		m.Code,
		m.Capacity,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert bin "+m.BinID, err)
	}
	return nil
}

// FindBinByID retrieves a bin.
func (r *PgxLocationRepository) FindBinByID(ctx context.Context, binID string) (*domain.Bin, error) {
	query := `SELECT ` + binColumns + ` FROM bins WHERE bin_id = $1;`
	m, err := scanBinRow(r.Pool.QueryRow(ctx, query, binID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bin by ID "+binID, err)
	}
	bin := mapping.ToDomainBin(m)
	return &bin, nil
}

// ListBinsByLocation retrieves all bins of a location ordered by code.
func (r *PgxLocationRepository) ListBinsByLocation(ctx context.Context, locationID string) ([]domain.Bin, error) {
	query := `SELECT ` + binColumns + ` FROM bins WHERE location_id = $1 ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, locationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bins of location "+locationID, err)
	}
	defer rows.Close()

	bins := []models.Bin{}
	for rows.Next() {
		m, err := scanBinRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bin row", err)
		}
		bins = append(bins, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bin rows", err)
	}
	return mapping.ToDomainBinSlice(bins), nil
}

// UpdateBin rewrites a bin's mutable fields.
func (r *PgxLocationRepository) UpdateBin(ctx context.Context, bin domain.Bin) error {
	m := mapping.ToModelBin(bin)
	query := `
		UPDATE bins SET
			code = $2,
			capacity = $3,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE bin_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, m.BinID, m.Code, m.Capacity, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to update bin "+m.BinID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBin removes a bin. Callers check for stock first.
func (r *PgxLocationRepository) DeleteBin(ctx context.Context, binID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM bins WHERE bin_id = $1;`, binID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete bin "+binID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// BinHasStock reports whether any projection row references the bin.
func (r *PgxLocationRepository) BinHasStock(ctx context.Context, binID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cellar_stock WHERE bin_id = $1);`, binID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check stock in bin "+binID, err)
	}
	return exists, nil
}
