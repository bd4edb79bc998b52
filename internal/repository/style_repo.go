package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type CreateStyleInput struct {
	StyleKey     string
	Label        string
	Description  *string
	Emoji        *string
	DisplayOrder int
}

type StyleRepository struct {
	db DBTX
}

func NewStyleRepository(db DBTX) *StyleRepository {
	return &StyleRepository{db: db}
}

const styleColumns = `id, style_key, label, description, emoji, display_order, is_active, created_at, updated_at`

func scanClientStyle(row interface{ Scan(dest ...any) error }) (*models.ClientCoachingStyle, error) {
	var s models.ClientCoachingStyle
	err := row.Scan(
		&s.ID, &s.StyleKey, &s.Label, &s.Description, &s.Emoji,
		&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanTrainerStyle(row interface{ Scan(dest ...any) error }) (*models.TrainerCoachingStyle, error) {
	var s models.TrainerCoachingStyle
	err := row.Scan(
		&s.ID, &s.StyleKey, &s.Label, &s.Description, &s.Emoji,
		&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func styleTable(catalog string) (string, error) {
	switch catalog {
	case "client":
		return "client_coaching_styles", nil
	case "trainer":
		return "trainer_coaching_styles", nil
	default:
		return "", fmt.Errorf("unknown style catalog %q", catalog)
	}
}

func (r *StyleRepository) KeyExists(ctx context.Context, catalog string, styleKey string) (bool, error) {
	table, err := styleTable(catalog)
	if err != nil {
		return false, err
	}
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE style_key = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, styleKey).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *StyleRepository) CreateClientStyle(
	ctx context.Context,
	input CreateStyleInput,
) (*models.ClientCoachingStyle, error) {
	query := `
		INSERT INTO client_coaching_styles (style_key, label, description, emoji, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + styleColumns
	return scanClientStyle(r.db.QueryRow(
		ctx, query,
		input.StyleKey, input.Label, input.Description, input.Emoji, input.DisplayOrder,
	))
}

func (r *StyleRepository) CreateTrainerStyle(
	ctx context.Context,
	input CreateStyleInput,
) (*models.TrainerCoachingStyle, error) {
	query := `
		INSERT INTO trainer_coaching_styles (style_key, label, description, emoji, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + styleColumns
	return scanTrainerStyle(r.db.QueryRow(
		ctx, query,
		input.StyleKey, input.Label, input.Description, input.Emoji, input.DisplayOrder,
	))
}

// Deactivate hides a style from pickers. Mappings referencing it are left
// untouched for audit.
func (r *StyleRepository) Deactivate(ctx context.Context, catalog string, styleID int64) error {
	table, err := styleTable(catalog)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + ` SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, styleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *StyleRepository) ListClientStyles(ctx context.Context, activeOnly bool) ([]models.ClientCoachingStyle, error) {
	query := `SELECT ` + styleColumns + ` FROM client_coaching_styles`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	styles := make([]models.ClientCoachingStyle, 0)
	for rows.Next() {
		s, err := scanClientStyle(rows)
		if err != nil {
			return nil, err
		}
		styles = append(styles, *s)
	}
	return styles, rows.Err()
}

func (r *StyleRepository) ListTrainerStyles(ctx context.Context, activeOnly bool) ([]models.TrainerCoachingStyle, error) {
	query := `SELECT ` + styleColumns + ` FROM trainer_coaching_styles`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	styles := make([]models.TrainerCoachingStyle, 0)
	for rows.Next() {
		s, err := scanTrainerStyle(rows)
		if err != nil {
			return nil, err
		}
		styles = append(styles, *s)
	}
	return styles, rows.Err()
}

const mappingColumns = `id, client_style_id, trainer_style_id, weight, mapping_type, created_at, updated_at`

func scanMapping(row interface{ Scan(dest ...any) error }) (*models.CoachingStyleMapping, error) {
	var m models.CoachingStyleMapping
	err := row.Scan(
		&m.ID, &m.ClientStyleID, &m.TrainerStyleID, &m.Weight,
		&m.MappingType, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *StyleRepository) CreateMapping(
	ctx context.Context,
	clientStyleID int64,
	trainerStyleID int64,
	mappingType models.MappingType,
	weight int,
) (*models.CoachingStyleMapping, error) {
	query := `
		INSERT INTO coaching_style_mappings (client_style_id, trainer_style_id, weight, mapping_type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + mappingColumns
	return scanMapping(r.db.QueryRow(ctx, query, clientStyleID, trainerStyleID, weight, mappingType))
}

func (r *StyleRepository) UpdateMappingWeight(
	ctx context.Context,
	mappingID int64,
	weight int,
) (*models.CoachingStyleMapping, error) {
	query := `
		UPDATE coaching_style_mappings
		SET weight = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mappingColumns
	return scanMapping(r.db.QueryRow(ctx, query, mappingID, weight))
}

func (r *StyleRepository) DeleteMapping(ctx context.Context, mappingID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM coaching_style_mappings WHERE id = $1`, mappingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *StyleRepository) ListMappings(ctx context.Context) ([]models.CoachingStyleMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM coaching_style_mappings
		ORDER BY client_style_id ASC, weight DESC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make([]models.CoachingStyleMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, *m)
	}
	return mappings, rows.Err()
}

// ListUnmappedTrainerStyleIDs surfaces trainer styles excluded from matching
// because no edge points at them. A data-quality signal, not an error.
func (r *StyleRepository) ListUnmappedTrainerStyleIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT s.id
		FROM trainer_coaching_styles s
		WHERE s.is_active = TRUE
		  AND NOT EXISTS (
			SELECT 1 FROM coaching_style_mappings m WHERE m.trainer_style_id = s.id
		  )
		ORDER BY s.id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
