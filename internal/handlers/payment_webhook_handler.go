package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	stripe "github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type webhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

type paymentRecorder interface {
	RecordPaymentCompleted(ctx context.Context, requestID int64) (*models.SelectionRequest, error)
}

type PaymentWebhookHandler struct {
	verifier webhookVerifier
	service  paymentRecorder
	logger   *zap.Logger
}

func NewPaymentWebhookHandler(verifier webhookVerifier, service paymentRecorder, logger *zap.Logger) *PaymentWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookHandler{verifier: verifier, service: service, logger: logger}
}

// HandleStripeWebhook consumes checkout completions. Other event types are
// acknowledged and dropped; deliveries are retried by the sender, so the
// completion path is idempotent.
func (h *PaymentWebhookHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := h.verifier.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	if event.Type != "checkout.session.completed" {
		return c.SendStatus(fiber.StatusOK)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("decode checkout session", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event payload"})
	}

	requestID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
	if err != nil || requestID <= 0 {
		h.logger.Error("webhook missing request reference",
			zap.String("session_id", session.ID),
		)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing request reference"})
	}

	request, err := h.service.RecordPaymentCompleted(c.Context(), requestID)
	if err != nil {
		h.logger.Error("record payment completion",
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
		return mapServiceError(c, err, "Failed to record payment")
	}

	h.logger.Info("payment completed",
		zap.Int64("request_id", request.ID),
		zap.Int64("client_id", request.ClientID),
		zap.Int64("trainer_id", request.TrainerID),
	)
	return c.SendStatus(fiber.StatusOK)
}
