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

type PgxWineRepository struct {
	BaseRepository
}

// newPgxWineRepository creates a new repository for the wine catalog.
func newPgxWineRepository(pool *pgxpool.Pool) portsrepo.WineRepository {
	return &PgxWineRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.WineRepository = (*PgxWineRepository)(nil)

const wineColumns = `wine_id, name, wine_domain, wine_type, year, region, classification, notes, closed, copy_of_id, created_at, created_by, last_updated_at, last_updated_by`

func scanWineRow(row pgx.Row) (models.Wine, error) {
	var w models.Wine
	err := row.Scan(
		&w.WineID,
		&w.Name,
		&w.WineDomain,
		&w.WineType,
		&w.Year,
		&w.Region,
		&w.Classification,
		&w.Notes,
		&w.Closed,
		&w.CopyOfID,
		&w.CreatedAt,
		&w.CreatedBy,
		&w.LastUpdatedAt,
		&w.LastUpdatedBy,
	)
	return w, err
}

// SaveWine inserts a wine and its grape associations in one transaction.
// A natural-key collision surfaces as apperrors.ErrDuplicate.
func (r *PgxWineRepository) SaveWine(ctx context.Context, wine domain.Wine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelWine(wine)
	query := `
		INSERT INTO wines (` + wineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, query,
		m.WineID,
		m.Name,
		m.WineDomain,
		m.WineType,
		m.Year,
		m.Region,
		m.Classification,
		m.Notes,
		m.Closed,
		m.CopyOfID,
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
		return apperrors.NewAppError(500, "failed to insert wine "+m.WineID, err)
	}

	if err := r.replaceGrapesInTx(ctx, tx, wine.WineID, wine.Grapes); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindWineByID retrieves a wine with its grape associations.
func (r *PgxWineRepository) FindWineByID(ctx context.Context, wineID string) (*domain.Wine, error) {
	query := `SELECT ` + wineColumns + ` FROM wines WHERE wine_id = $1;`
	m, err := scanWineRow(r.Pool.QueryRow(ctx, query, wineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wine by ID "+wineID, err)
	}
	wine := mapping.ToDomainWine(m)
	grapes, err := r.listGrapesOfWine(ctx, wineID)
	if err != nil {
		return nil, err
	}
	wine.Grapes = grapes
	return &wine, nil
}

// FindWineByNaturalKey retrieves a wine by its (name, domain, year) key.
func (r *PgxWineRepository) FindWineByNaturalKey(ctx context.Context, name, wineDomain string, year int) (*domain.Wine, error) {
	query := `SELECT ` + wineColumns + ` FROM wines WHERE name = $1 AND wine_domain = $2 AND year = $3;`
	m, err := scanWineRow(r.Pool.QueryRow(ctx, query, name, wineDomain, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wine by natural key", err)
	}
	wine := mapping.ToDomainWine(m)
	return &wine, nil
}

// ListWines retrieves catalog entries ordered by name. Closed wines are
// hidden unless asked for.
func (r *PgxWineRepository) ListWines(ctx context.Context, includeClosed bool) ([]domain.Wine, error) {
	query := `SELECT ` + wineColumns + ` FROM wines`
	if !includeClosed {
		query += ` WHERE closed = FALSE`
	}
	query += ` ORDER BY name, year;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query wines", err)
	}
	defer rows.Close()

	wines := []models.Wine{}
	for rows.Next() {
		m, err := scanWineRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan wine row", err)
		}
		wines = append(wines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating wine rows", err)
	}
	return mapping.ToDomainWineSlice(wines), nil
}

// UpdateWine rewrites a wine's mutable fields and grape associations.
func (r *PgxWineRepository) UpdateWine(ctx context.Context, wine domain.Wine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelWine(wine)
	query := `
		UPDATE wines SET
			name = $2,
			wine_domain = $3,
			wine_type = $4,
			year = $5,
			region = $6,
			classification = $7,
			notes = $8,
			closed = $9,
			last_updated_at = $10,
			last_updated_by = $11
		WHERE wine_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.WineID,
		m.Name,
		m.WineDomain,
		m.WineType,
		m.Year,
		m.Region,
		m.Classification,
		m.Notes,
		m.Closed,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to update wine "+m.WineID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.replaceGrapesInTx(ctx, tx, wine.WineID, wine.Grapes); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// CountCopies counts copies derived from the given origin wine.
func (r *PgxWineRepository) CountCopies(ctx context.Context, originWineID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM wines WHERE copy_of_id = $1;`, originWineID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count copies of wine "+originWineID, err)
	}
	return count, nil
}

// SaveGrape inserts a grape variety.
func (r *PgxWineRepository) SaveGrape(ctx context.Context, grape domain.GrapeVariety) error {
	m := mapping.ToModelGrape(grape)
	_, err := r.Pool.Exec(ctx, `INSERT INTO grape_varieties (grape_id, name) VALUES ($1, $2);`, m.GrapeID, m.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert grape variety "+m.GrapeID, err)
	}
	return nil
}

// ListGrapes retrieves all grape varieties ordered by name.
func (r *PgxWineRepository) ListGrapes(ctx context.Context) ([]domain.GrapeVariety, error) {
	rows, err := r.Pool.Query(ctx, `SELECT grape_id, name FROM grape_varieties ORDER BY name;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query grape varieties", err)
	}
	defer rows.Close()

	grapes := []domain.GrapeVariety{}
	for rows.Next() {
		var m models.GrapeVariety
		if err := rows.Scan(&m.GrapeID, &m.Name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan grape variety row", err)
		}
		grapes = append(grapes, mapping.ToDomainGrape(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating grape variety rows", err)
	}
	return grapes, nil
}

// replaceGrapesInTx rewrites the wine_grapes join rows for a wine.
func (r *PgxWineRepository) replaceGrapesInTx(ctx context.Context, tx pgx.Tx, wineID string, grapes []domain.GrapeVariety) error {
	if _, err := tx.Exec(ctx, `DELETE FROM wine_grapes WHERE wine_id = $1;`, wineID); err != nil {
		return apperrors.NewAppError(500, "failed to clear grape associations for wine "+wineID, err)
	}
	for _, g := range grapes {
		_, err := tx.Exec(ctx, `INSERT INTO wine_grapes (wine_id, grape_id) VALUES ($1, $2);`, wineID, g.GrapeID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to associate grape "+g.GrapeID+" with wine "+wineID, err)
		}
	}
	return nil
}

func (r *PgxWineRepository) listGrapesOfWine(ctx context.Context, wineID string) ([]domain.GrapeVariety, error) {
	query := `
		SELECT g.grape_id, g.name
		FROM grape_varieties g
		JOIN wine_grapes wg ON wg.grape_id = g.grape_id
		WHERE wg.wine_id = $1
		ORDER BY g.name;
	`
	rows, err := r.Pool.Query(ctx, query, wineID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query grapes of wine "+wineID, err)
	}
	defer rows.Close()

	grapes := []domain.GrapeVariety{}
	for rows.Next() {
		var m models.GrapeVariety
		if err := rows.Scan(&m.GrapeID, &m.Name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan grape row", err)
		}
		grapes = append(grapes, mapping.ToDomainGrape(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating grape rows", err)
	}
	return grapes, nil
}
