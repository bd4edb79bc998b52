package repository

import (
	"context"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type CreateSelectionRequestInput struct {
	ClientID        int64
	TrainerID       int64
	PackageID       int64
	PackageName     string
	PackagePrice    float64
	PackageDuration int
	ClientMessage   *string
}

type SuggestAlternativeInput struct {
	PackageID       int64
	PackageName     string
	PackagePrice    float64
	PackageDuration int
	TrainerResponse string
}

type SelectionRepository struct {
	db DBTX
}

func NewSelectionRepository(db DBTX) *SelectionRepository {
	return &SelectionRepository{db: db}
}

const selectionColumns = `id, client_id, trainer_id, package_id, package_name, package_price,
		package_duration_weeks, client_message, status, suggested_package_id,
		suggested_package_name, suggested_package_price, suggested_package_duration_weeks,
		trainer_response, created_at, updated_at`

func scanSelection(row interface{ Scan(dest ...any) error }) (*models.SelectionRequest, error) {
	var req models.SelectionRequest
	err := row.Scan(
		&req.ID,
		&req.ClientID,
		&req.TrainerID,
		&req.PackageID,
		&req.PackageName,
		&req.PackagePrice,
		&req.PackageDuration,
		&req.ClientMessage,
		&req.Status,
		&req.SuggestedPackageID,
		&req.SuggestedPackageName,
		&req.SuggestedPackagePrice,
		&req.SuggestedPackageDuration,
		&req.TrainerResponse,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SelectionRepository) Create(
	ctx context.Context,
	input CreateSelectionRequestInput,
) (*models.SelectionRequest, error) {
	query := `
		INSERT INTO selection_requests (
			client_id, trainer_id, package_id, package_name, package_price,
			package_duration_weeks, client_message, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING ` + selectionColumns
	return scanSelection(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.TrainerID,
		input.PackageID,
		input.PackageName,
		input.PackagePrice,
		input.PackageDuration,
		input.ClientMessage,
	))
}

func (r *SelectionRepository) GetByID(ctx context.Context, requestID int64) (*models.SelectionRequest, error) {
	query := `
		SELECT ` + selectionColumns + `
		FROM selection_requests
		WHERE id = $1
	`
	return scanSelection(r.db.QueryRow(ctx, query, requestID))
}

func (r *SelectionRepository) GetByIDForUpdate(ctx context.Context, requestID int64) (*models.SelectionRequest, error) {
	query := `
		SELECT ` + selectionColumns + `
		FROM selection_requests
		WHERE id = $1
		FOR UPDATE
	`
	return scanSelection(r.db.QueryRow(ctx, query, requestID))
}

// HasLiveRequest reports whether the pair already has a request in a
// non-terminal status. A client may not stack concurrent live requests
// against the same trainer.
func (r *SelectionRepository) HasLiveRequest(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM selection_requests
			WHERE client_id = $1
			  AND trainer_id = $2
			  AND status NOT IN ('declined', 'completed')
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, clientID, trainerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateStatusIfCurrent is the only write path for the status column;
// pgx.ErrNoRows means the request moved concurrently.
func (r *SelectionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	requestID int64,
	currentStatus models.RequestStatus,
	nextStatus models.RequestStatus,
) (*models.SelectionRequest, error) {
	query := `
		UPDATE selection_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + selectionColumns
	return scanSelection(r.db.QueryRow(ctx, query, requestID, currentStatus, nextStatus))
}

func (r *SelectionRepository) SetAlternative(
	ctx context.Context,
	requestID int64,
	currentStatus models.RequestStatus,
	input SuggestAlternativeInput,
) (*models.SelectionRequest, error) {
	query := `
		UPDATE selection_requests
		SET status = 'alternative_suggested',
			suggested_package_id = $3,
			suggested_package_name = $4,
			suggested_package_price = $5,
			suggested_package_duration_weeks = $6,
			trainer_response = $7,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + selectionColumns
	return scanSelection(r.db.QueryRow(
		ctx,
		query,
		requestID,
		currentStatus,
		input.PackageID,
		input.PackageName,
		input.PackagePrice,
		input.PackageDuration,
		input.TrainerResponse,
	))
}

// PromoteAlternative overwrites the current package with the suggested one,
// so there is exactly one current package per request at all times.
func (r *SelectionRepository) PromoteAlternative(
	ctx context.Context,
	requestID int64,
) (*models.SelectionRequest, error) {
	query := `
		UPDATE selection_requests
		SET package_id = suggested_package_id,
			package_name = suggested_package_name,
			package_price = suggested_package_price,
			package_duration_weeks = suggested_package_duration_weeks,
			suggested_package_id = NULL,
			suggested_package_name = NULL,
			suggested_package_price = NULL,
			suggested_package_duration_weeks = NULL,
			status = 'accepted',
			updated_at = NOW()
		WHERE id = $1 AND status = 'alternative_suggested'
		RETURNING ` + selectionColumns
	return scanSelection(r.db.QueryRow(ctx, query, requestID))
}

func (r *SelectionRepository) ListForPair(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) ([]models.SelectionRequest, error) {
	query := `
		SELECT ` + selectionColumns + `
		FROM selection_requests
		WHERE client_id = $1 AND trainer_id = $2
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, clientID, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.SelectionRequest, 0)
	for rows.Next() {
		req, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *SelectionRepository) ListForTrainer(
	ctx context.Context,
	trainerID int64,
	status models.RequestStatus,
) ([]models.SelectionRequest, error) {
	args := []any{trainerID}
	query := `
		SELECT ` + selectionColumns + `
		FROM selection_requests
		WHERE trainer_id = $1
	`
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.SelectionRequest, 0)
	for rows.Next() {
		req, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
