package repository

import (
	"context"
	"time"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type EngagementRepository struct {
	db DBTX
}

func NewEngagementRepository(db DBTX) *EngagementRepository {
	return &EngagementRepository{db: db}
}

const engagementColumns = `id, client_id, trainer_id, stage, notes, became_client_at, created_at, updated_at`

func scanEngagement(row interface{ Scan(dest ...any) error }) (*models.Engagement, error) {
	var e models.Engagement
	err := row.Scan(
		&e.ID,
		&e.ClientID,
		&e.TrainerID,
		&e.Stage,
		&e.Notes,
		&e.BecameClientAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetOrCreate returns the engagement for the pair, creating it at browsing
// on first view. The unique (client_id, trainer_id) index makes the insert
// race-safe.
func (r *EngagementRepository) GetOrCreate(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) (*models.Engagement, error) {
	query := `
		INSERT INTO engagements (client_id, trainer_id, stage)
		VALUES ($1, $2, 'browsing')
		ON CONFLICT (client_id, trainer_id)
		DO UPDATE SET updated_at = engagements.updated_at
		RETURNING ` + engagementColumns
	return scanEngagement(r.db.QueryRow(ctx, query, clientID, trainerID))
}

func (r *EngagementRepository) GetByPair(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) (*models.Engagement, error) {
	query := `
		SELECT ` + engagementColumns + `
		FROM engagements
		WHERE client_id = $1 AND trainer_id = $2
	`
	return scanEngagement(r.db.QueryRow(ctx, query, clientID, trainerID))
}

// UpdateStageIfCurrent advances the stage only if nobody else moved it
// first; pgx.ErrNoRows signals the lost race.
func (r *EngagementRepository) UpdateStageIfCurrent(
	ctx context.Context,
	engagementID int64,
	currentStage models.Stage,
	nextStage models.Stage,
) (*models.Engagement, error) {
	query := `
		UPDATE engagements
		SET stage = $3,
			became_client_at = CASE
				WHEN $3 = 'active_client' AND became_client_at IS NULL THEN NOW()
				ELSE became_client_at
			END,
			updated_at = NOW()
		WHERE id = $1 AND stage = $2
		RETURNING ` + engagementColumns
	return scanEngagement(r.db.QueryRow(ctx, query, engagementID, currentStage, nextStage))
}

func (r *EngagementRepository) UpdateNotes(
	ctx context.Context,
	engagementID int64,
	notes *string,
) (*models.Engagement, error) {
	query := `
		UPDATE engagements
		SET notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + engagementColumns
	return scanEngagement(r.db.QueryRow(ctx, query, engagementID, notes))
}

func (r *EngagementRepository) ListForClient(
	ctx context.Context,
	clientID int64,
) ([]models.Engagement, error) {
	return r.list(ctx, "client_id", clientID)
}

func (r *EngagementRepository) ListForTrainer(
	ctx context.Context,
	trainerID int64,
) ([]models.Engagement, error) {
	return r.list(ctx, "trainer_id", trainerID)
}

func (r *EngagementRepository) list(
	ctx context.Context,
	column string,
	actorID int64,
) ([]models.Engagement, error) {
	query := `
		SELECT ` + engagementColumns + `
		FROM engagements
		WHERE ` + column + ` = $1
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	engagements := make([]models.Engagement, 0)
	for rows.Next() {
		var e models.Engagement
		var becameClientAt *time.Time
		if err := rows.Scan(
			&e.ID,
			&e.ClientID,
			&e.TrainerID,
			&e.Stage,
			&e.Notes,
			&becameClientAt,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.BecameClientAt = becameClientAt
		engagements = append(engagements, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return engagements, nil
}
