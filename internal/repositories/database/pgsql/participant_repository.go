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

type PgxParticipantRepository struct {
	BaseRepository
}

// newPgxParticipantRepository creates a new repository for participants.
func newPgxParticipantRepository(pool *pgxpool.Pool) portsrepo.ParticipantRepository {
	return &PgxParticipantRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ParticipantRepository = (*PgxParticipantRepository)(nil)

const participantColumns = `participant_id, name, created_at, created_by, last_updated_at, last_updated_by`

func scanParticipantRow(row pgx.Row) (models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ParticipantID,
		&p.Name,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	return p, err
}

// SaveParticipant inserts a participant.
func (r *PgxParticipantRepository) SaveParticipant(ctx context.Context, participant domain.Participant) error {
	m := mapping.ToModelParticipant(participant)
	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ParticipantID,
		m.Name,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert participant "+m.ParticipantID, err)
	}
	return nil
}

// FindParticipantByID retrieves a participant with its linked user IDs.
func (r *PgxParticipantRepository) FindParticipantByID(ctx context.Context, participantID string) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE participant_id = $1;`
	m, err := scanParticipantRow(r.Pool.QueryRow(ctx, query, participantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find participant by ID "+participantID, err)
	}
	participant := mapping.ToDomainParticipant(m)

	userIDs, err := r.listLinkedUsers(ctx, participantID)
	if err != nil {
		return nil, err
	}
	participant.UserIDs = userIDs
	return &participant, nil
}

// ListParticipants retrieves all participants ordered by name.
func (r *PgxParticipantRepository) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY name;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query participants", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		m, err := scanParticipantRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan participant row", err)
		}
		participants = append(participants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating participant rows", err)
	}
	return mapping.ToDomainParticipantSlice(participants), nil
}

// UpdateParticipant rewrites a participant's mutable fields.
func (r *PgxParticipantRepository) UpdateParticipant(ctx context.Context, participant domain.Participant) error {
	m := mapping.ToModelParticipant(participant)
	query := `
		UPDATE participants SET
			name = $2,
			last_updated_at = $3,
			last_updated_by = $4
		WHERE participant_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, m.ParticipantID, m.Name, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update participant "+m.ParticipantID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// LinkUser associates a user account with a participant. Linking twice
// surfaces as apperrors.ErrDuplicate.
func (r *PgxParticipantRepository) LinkUser(ctx context.Context, participantID, userID string) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO participant_users (participant_id, user_id) VALUES ($1, $2);`, participantID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to link user "+userID+" to participant "+participantID, err)
	}
	return nil
}

// UnlinkUser removes a user-account association.
func (r *PgxParticipantRepository) UnlinkUser(ctx context.Context, participantID, userID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM participant_users WHERE participant_id = $1 AND user_id = $2;`, participantID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to unlink user "+userID+" from participant "+participantID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListParticipantsByUser retrieves the participants a user is linked to.
func (r *PgxParticipantRepository) ListParticipantsByUser(ctx context.Context, userID string) ([]domain.Participant, error) {
	query := `
		SELECT p.participant_id, p.name, p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
		FROM participants p
		JOIN participant_users pu ON pu.participant_id = p.participant_id
		WHERE pu.user_id = $1
		ORDER BY p.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query participants of user "+userID, err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		m, err := scanParticipantRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan participant row", err)
		}
		participants = append(participants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating participant rows", err)
	}
	return mapping.ToDomainParticipantSlice(participants), nil
}

func (r *PgxParticipantRepository) listLinkedUsers(ctx context.Context, participantID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT user_id FROM participant_users WHERE participant_id = $1 ORDER BY user_id;`, participantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query linked users of participant "+participantID, err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan linked user row", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating linked user rows", err)
	}
	return userIDs, nil
}
