package repository

import (
	"context"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type ClientOnboardingInput struct {
	FullName         string
	Goals            []string
	CoachingStyleIDs []int64
}

type ClientProfileRepository struct {
	db DBTX
}

func NewClientProfileRepository(db DBTX) *ClientProfileRepository {
	return &ClientProfileRepository{db: db}
}

const clientProfileColumns = `id, user_id, full_name, avatar_url, goals, coaching_style_ids,
		onboarding_complete, created_at, updated_at`

func scanClientProfile(row interface{ Scan(dest ...any) error }) (*models.ClientProfile, error) {
	var p models.ClientProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.AvatarURL,
		&p.Goals,
		&p.CoachingStyleIDs,
		&p.OnboardingComplete,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ClientProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO client_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *ClientProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error) {
	query := `
		SELECT ` + clientProfileColumns + `
		FROM client_profiles
		WHERE user_id = $1
	`
	return scanClientProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ClientProfileRepository) UpdateOnboarding(
	ctx context.Context,
	userID int64,
	req ClientOnboardingInput,
) (*models.ClientProfile, error) {
	query := `
		UPDATE client_profiles
		SET full_name = $1,
			goals = $2,
			coaching_style_ids = $3,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $4
		RETURNING ` + clientProfileColumns
	return scanClientProfile(r.db.QueryRow(ctx, query,
		req.FullName,
		req.Goals,
		req.CoachingStyleIDs,
		userID,
	))
}

func (r *ClientProfileRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `
		UPDATE client_profiles
		SET avatar_url = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, avatarURL)
	return err
}
