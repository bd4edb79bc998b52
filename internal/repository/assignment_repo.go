package repository

import (
	"context"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type CreateAssignmentInput struct {
	ClientID       int64
	TrainerID      int64
	TemplateName   string
	TemplateBaseID int64
	CorrelationID  string
}

type AssignmentRepository struct {
	db DBTX
}

func NewAssignmentRepository(db DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, client_id, trainer_id, template_name, template_base_id,
		status, assigned_at, expired_at, expired_reason, correlation_id`

func scanAssignment(row interface{ Scan(dest ...any) error }) (*models.TemplateAssignment, error) {
	var a models.TemplateAssignment
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.TrainerID,
		&a.TemplateName,
		&a.TemplateBaseID,
		&a.Status,
		&a.AssignedAt,
		&a.ExpiredAt,
		&a.ExpiredReason,
		&a.CorrelationID,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) FindActiveByClient(
	ctx context.Context,
	clientID int64,
) (*models.TemplateAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM template_assignments
		WHERE client_id = $1 AND status = 'active'
		ORDER BY assigned_at DESC
		LIMIT 1
	`
	return scanAssignment(r.db.QueryRow(ctx, query, clientID))
}

// Create inserts the new active row only while no other active row exists
// for the client. pgx.ErrNoRows means an active assignment appeared between
// the caller's check and this insert.
func (r *AssignmentRepository) Create(
	ctx context.Context,
	input CreateAssignmentInput,
) (*models.TemplateAssignment, error) {
	query := `
		INSERT INTO template_assignments (
			client_id, trainer_id, template_name, template_base_id, status, correlation_id
		)
		SELECT $1, $2, $3, $4, 'active', $5
		WHERE NOT EXISTS (
			SELECT 1 FROM template_assignments
			WHERE client_id = $1 AND status = 'active'
		)
		RETURNING ` + assignmentColumns
	return scanAssignment(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.TrainerID,
		input.TemplateName,
		input.TemplateBaseID,
		input.CorrelationID,
	))
}

func (r *AssignmentRepository) Expire(
	ctx context.Context,
	assignmentID int64,
	reason string,
) (*models.TemplateAssignment, error) {
	query := `
		UPDATE template_assignments
		SET status = 'expired', expired_at = NOW(), expired_reason = $2
		WHERE id = $1 AND status = 'active'
		RETURNING ` + assignmentColumns
	return scanAssignment(r.db.QueryRow(ctx, query, assignmentID, reason))
}

func (r *AssignmentRepository) ListByClient(
	ctx context.Context,
	clientID int64,
) ([]models.TemplateAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM template_assignments
		WHERE client_id = $1
		ORDER BY assigned_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.TemplateAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
