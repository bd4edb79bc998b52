package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type TrainerListFilter struct {
	Specialization string
	MinRating      float64
	MaxPrice       float64
	Offset         int
	Limit          int
}

type TrainerOnboardingInput struct {
	FullName          string
	Bio               string
	WaysOfWorking     string
	Specializations   []string
	HourlyRate        float64
	DiscoveryCallNote string
	CoachingStyleIDs  []int64
}

type TrainerProfileRepository struct {
	db DBTX
}

func NewTrainerProfileRepository(db DBTX) *TrainerProfileRepository {
	return &TrainerProfileRepository{db: db}
}

const trainerProfileColumns = `id, user_id, full_name, avatar_url, bio, ways_of_working,
		specializations, hourly_rate, discovery_call_note, rating, total_reviews,
		coaching_style_ids, gallery_urls, onboarding_complete, created_at, updated_at`

func scanTrainerProfile(row interface{ Scan(dest ...any) error }) (*models.TrainerProfile, error) {
	var p models.TrainerProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.AvatarURL,
		&p.Bio,
		&p.WaysOfWorking,
		&p.Specializations,
		&p.HourlyRate,
		&p.DiscoveryCallNote,
		&p.Rating,
		&p.TotalReviews,
		&p.CoachingStyleIDs,
		&p.GalleryURLs,
		&p.OnboardingComplete,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *TrainerProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO trainer_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *TrainerProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.TrainerProfile, error) {
	query := `
		SELECT ` + trainerProfileColumns + `
		FROM trainer_profiles
		WHERE user_id = $1
	`
	return scanTrainerProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *TrainerProfileRepository) UpdateOnboarding(
	ctx context.Context,
	userID int64,
	req TrainerOnboardingInput,
) (*models.TrainerProfile, error) {
	query := `
		UPDATE trainer_profiles
		SET full_name = $1,
			bio = $2,
			ways_of_working = $3,
			specializations = $4,
			hourly_rate = $5,
			discovery_call_note = $6,
			coaching_style_ids = $7,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING ` + trainerProfileColumns
	return scanTrainerProfile(r.db.QueryRow(ctx, query,
		req.FullName,
		req.Bio,
		req.WaysOfWorking,
		req.Specializations,
		req.HourlyRate,
		req.DiscoveryCallNote,
		req.CoachingStyleIDs,
		userID,
	))
}

func (r *TrainerProfileRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `
		UPDATE trainer_profiles
		SET avatar_url = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, avatarURL)
	return err
}

func (r *TrainerProfileRepository) AppendGalleryURL(ctx context.Context, userID int64, fileURL string) error {
	query := `
		UPDATE trainer_profiles
		SET gallery_urls = array_append(gallery_urls, $2), updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, fileURL)
	return err
}

func (r *TrainerProfileRepository) List(
	ctx context.Context,
	filter TrainerListFilter,
) ([]models.TrainerProfile, int, error) {
	args := []any{}
	whereParts := []string{"onboarding_complete = TRUE"}

	if spec := strings.TrimSpace(filter.Specialization); spec != "" {
		args = append(args, spec)
		whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(specializations)", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		whereParts = append(whereParts, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		whereParts = append(whereParts, fmt.Sprintf("hourly_rate <= $%d", len(args)))
	}

	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM trainer_profiles WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT `+trainerProfileColumns+`
		FROM trainer_profiles
		WHERE %s
		ORDER BY rating DESC NULLS LAST, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.TrainerProfile, 0)
	for rows.Next() {
		p, err := scanTrainerProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *TrainerProfileRepository) ListAll(ctx context.Context) ([]models.TrainerProfile, error) {
	query := `
		SELECT ` + trainerProfileColumns + `
		FROM trainer_profiles
		WHERE onboarding_complete = TRUE
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.TrainerProfile, 0)
	for rows.Next() {
		p, err := scanTrainerProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}

	return profiles, rows.Err()
}
