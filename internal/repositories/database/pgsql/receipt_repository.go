package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	"github.com/kelderman/wine_cellar_app/internal/models"
	"github.com/kelderman/wine_cellar_app/internal/utils/mapping"
)

type PgxReceiptRepository struct {
	BaseRepository
}

// newPgxReceiptRepository creates a new repository for acquisition receipts.
func newPgxReceiptRepository(pool *pgxpool.Pool) portsrepo.ReceiptRepository {
	return &PgxReceiptRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReceiptRepository = (*PgxReceiptRepository)(nil)

const receiptColumns = `receipt_id, participant_id, wine_id, receipt_date, supplier, price, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanReceiptRow(row pgx.Row) (models.Receipt, error) {
	var rc models.Receipt
	err := row.Scan(
		&rc.ReceiptID,
		&rc.ParticipantID,
		&rc.WineID,
		&rc.ReceiptDate,
		&rc.Supplier,
		&rc.Price,
		&rc.Notes,
		&rc.CreatedAt,
		&rc.CreatedBy,
		&rc.LastUpdatedAt,
		&rc.LastUpdatedBy,
	)
	return rc, err
}

// SaveReceipt inserts a receipt.
func (r *PgxReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)
	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ReceiptID,
		m.ParticipantID,
		m.WineID,
		m.ReceiptDate,
		m.Supplier,
		m.Price,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert receipt "+m.ReceiptID, err)
	}
	return nil
}

// FindReceiptByID retrieves a receipt.
func (r *PgxReceiptRepository) FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_id = $1;`
	m, err := scanReceiptRow(r.Pool.QueryRow(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find receipt by ID "+receiptID, err)
	}
	receipt := mapping.ToDomainReceipt(m)
	return &receipt, nil
}

func (r *PgxReceiptRepository) listReceipts(ctx context.Context, where string, arg any) ([]domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE ` + where + ` ORDER BY receipt_date DESC, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query receipts", err)
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	for rows.Next() {
		m, err := scanReceiptRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan receipt row", err)
		}
		receipts = append(receipts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating receipt rows", err)
	}
	return mapping.ToDomainReceiptSlice(receipts), nil
}

// ListReceiptsByParticipant retrieves all receipts of a participant.
func (r *PgxReceiptRepository) ListReceiptsByParticipant(ctx context.Context, participantID string) ([]domain.Receipt, error) {
	return r.listReceipts(ctx, `participant_id = $1`, participantID)
}

// ListReceiptsByWine retrieves all receipts of a wine.
func (r *PgxReceiptRepository) ListReceiptsByWine(ctx context.Context, wineID string) ([]domain.Receipt, error) {
	return r.listReceipts(ctx, `wine_id = $1`, wineID)
}

// UpdateReceipt rewrites a receipt's mutable fields. Participant and wine
// references are fixed at creation.
func (r *PgxReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)
	query := `
		UPDATE receipts SET
			receipt_date = $2,
			supplier = $3,
			price = $4,
			notes = $5,
			last_updated_at = $6,
			last_updated_by = $7
		WHERE receipt_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.ReceiptID,
		m.ReceiptDate,
		m.Supplier,
		m.Price,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update receipt "+m.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteReceipt removes a receipt. Callers check dependents first.
func (r *PgxReceiptRepository) DeleteReceipt(ctx context.Context, receiptID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM receipts WHERE receipt_id = $1;`, receiptID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete receipt "+receiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// HasDependents reports whether ledger entries or order lines still reference
// the receipt. Projection rows only exist while movements do, so checking the
// ledger covers them.
func (r *PgxReceiptRepository) HasDependents(ctx context.Context, receiptID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_movements WHERE receipt_id = $1)
			OR EXISTS (SELECT 1 FROM order_lines WHERE receipt_id = $1);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, receiptID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check dependents of receipt "+receiptID, err)
	}
	return exists, nil
}
