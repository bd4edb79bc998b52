package repository

import (
	"context"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type CreatePaymentInput struct {
	RequestID       int64
	ClientID        int64
	TrainerID       int64
	Amount          float64
	Status          string
	CheckoutSession *string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, request_id, client_id, trainer_id, amount, status, checkout_session, created_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.RequestID,
		&p.ClientID,
		&p.TrainerID,
		&p.Amount,
		&p.Status,
		&p.CheckoutSession,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Create(
	ctx context.Context,
	input CreatePaymentInput,
) (*models.Payment, error) {
	query := `
		INSERT INTO payments (request_id, client_id, trainer_id, amount, status, checkout_session)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.RequestID,
		input.ClientID,
		input.TrainerID,
		input.Amount,
		input.Status,
		input.CheckoutSession,
	))
}

func (r *PaymentRepository) GetByRequestID(ctx context.Context, requestID int64) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanPayment(r.db.QueryRow(ctx, query, requestID))
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	paymentID int64,
	currentStatus string,
	nextStatus string,
) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, paymentID, currentStatus, nextStatus))
}
