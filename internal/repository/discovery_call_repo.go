package repository

import (
	"context"
	"time"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type CreateDiscoveryCallInput struct {
	ClientID        int64
	TrainerID       int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

type DiscoveryCallRepository struct {
	db DBTX
}

func NewDiscoveryCallRepository(db DBTX) *DiscoveryCallRepository {
	return &DiscoveryCallRepository{db: db}
}

const discoveryCallColumns = `id, client_id, trainer_id, scheduled_at, duration_min, status, notes, created_at, updated_at`

func scanDiscoveryCall(row interface{ Scan(dest ...any) error }) (*models.DiscoveryCall, error) {
	var call models.DiscoveryCall
	err := row.Scan(
		&call.ID,
		&call.ClientID,
		&call.TrainerID,
		&call.ScheduledAt,
		&call.DurationMinutes,
		&call.Status,
		&call.Notes,
		&call.CreatedAt,
		&call.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *DiscoveryCallRepository) Create(
	ctx context.Context,
	input CreateDiscoveryCallInput,
) (*models.DiscoveryCall, error) {
	query := `
		INSERT INTO discovery_calls (client_id, trainer_id, scheduled_at, duration_min, status, notes)
		VALUES ($1, $2, $3, $4, 'booked', $5)
		RETURNING ` + discoveryCallColumns
	return scanDiscoveryCall(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.TrainerID,
		input.ScheduledAt,
		input.DurationMinutes,
		input.Notes,
	))
}

func (r *DiscoveryCallRepository) GetByID(ctx context.Context, callID int64) (*models.DiscoveryCall, error) {
	query := `
		SELECT ` + discoveryCallColumns + `
		FROM discovery_calls
		WHERE id = $1
	`
	return scanDiscoveryCall(r.db.QueryRow(ctx, query, callID))
}

func (r *DiscoveryCallRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	callID int64,
	currentStatus string,
	nextStatus string,
) (*models.DiscoveryCall, error) {
	query := `
		UPDATE discovery_calls
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + discoveryCallColumns
	return scanDiscoveryCall(r.db.QueryRow(ctx, query, callID, currentStatus, nextStatus))
}

// HasConflict reports whether the trainer already has a non-cancelled call
// overlapping the requested window.
func (r *DiscoveryCallRepository) HasConflict(
	ctx context.Context,
	trainerID int64,
	requestedTime time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM discovery_calls
			WHERE trainer_id = $1
			  AND status <> 'cancelled'
			  AND scheduled_at < ($2::timestamp + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamp
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, trainerID, requestedTime, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

func (r *DiscoveryCallRepository) ListForPair(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) ([]models.DiscoveryCall, error) {
	query := `
		SELECT ` + discoveryCallColumns + `
		FROM discovery_calls
		WHERE client_id = $1 AND trainer_id = $2
		ORDER BY scheduled_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, clientID, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := make([]models.DiscoveryCall, 0)
	for rows.Next() {
		call, err := scanDiscoveryCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *call)
	}

	return calls, rows.Err()
}
