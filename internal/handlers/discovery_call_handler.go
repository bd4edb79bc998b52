package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type discoveryCallApplicationService interface {
	BookCall(ctx context.Context, clientID int64, input services.BookDiscoveryCallInput) (*models.DiscoveryCall, error)
	CheckAvailability(ctx context.Context, trainerID int64, requestedTime time.Time, durationMins int) (bool, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, callID int64, requestedStatus string) (*models.DiscoveryCall, error)
	ListForPair(ctx context.Context, actorID int64, role string, clientID int64, trainerID int64) ([]models.DiscoveryCall, error)
}

type DiscoveryCallHandler struct {
	service discoveryCallApplicationService
}

func NewDiscoveryCallHandler(service discoveryCallApplicationService) *DiscoveryCallHandler {
	return &DiscoveryCallHandler{service: service}
}

type bookCallRequest struct {
	TrainerID       int64   `json:"trainer_id"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           *string `json:"notes,omitempty"`
}

func (h *DiscoveryCallHandler) BookCall(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleClient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	clientID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req bookCallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be RFC3339"})
	}

	call, err := h.service.BookCall(c.Context(), clientID, services.BookDiscoveryCallInput{
		TrainerID:       req.TrainerID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to book discovery call")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": call})
}

func (h *DiscoveryCallHandler) CheckAvailability(c *fiber.Ctx) error {
	trainerID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	requestedTime, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at must be RFC3339"})
	}

	duration := parsePositiveInt(c.Query("duration"), 30)

	available, err := h.service.CheckAvailability(c.Context(), trainerID, requestedTime, duration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check availability"})
	}

	return c.JSON(fiber.Map{"available": available})
}

type updateCallStatusRequest struct {
	Status string `json:"status"`
}

func (h *DiscoveryCallHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	callID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid call id"})
	}

	var req updateCallStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	call, err := h.service.UpdateStatus(c.Context(), userID, actorRole(c), callID, req.Status)
	if err != nil {
		return mapServiceError(c, err, "Failed to update discovery call")
	}

	return c.JSON(fiber.Map{"call": call})
}

func (h *DiscoveryCallHandler) ListCalls(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	role := actorRole(c)
	var clientID, trainerID int64
	switch role {
	case models.RoleClient:
		clientID = userID
		trainerID = int64(parsePositiveInt(c.Query("trainer_id"), 0))
	case models.RoleTrainer:
		trainerID = userID
		clientID = int64(parsePositiveInt(c.Query("client_id"), 0))
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	calls, err := h.service.ListForPair(c.Context(), userID, role, clientID, trainerID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch discovery calls")
	}

	return c.JSON(fiber.Map{"calls": calls})
}
