package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type selectionApplicationService interface {
	CreateRequest(ctx context.Context, clientID int64, input services.CreateSelectionInput) (*models.SelectionRequest, error)
	GetRequest(ctx context.Context, actorID int64, requestID int64) (*models.SelectionRequest, error)
	TrainerAccept(ctx context.Context, trainerID int64, requestID int64) (*models.SelectionRequest, error)
	TrainerDecline(ctx context.Context, trainerID int64, requestID int64) (*models.SelectionRequest, error)
	TrainerSuggestAlternative(ctx context.Context, trainerID int64, requestID int64, input services.AlternativePackageInput) (*models.SelectionRequest, error)
	ClientAcceptAlternative(ctx context.Context, clientID int64, requestID int64) (*models.SelectionRequest, error)
	InitiatePayment(ctx context.Context, clientID int64, requestID int64) (*models.SelectionDetail, error)
	ListForPair(ctx context.Context, clientID int64, trainerID int64) ([]models.SelectionRequest, error)
	ListForTrainer(ctx context.Context, trainerID int64, status models.RequestStatus) ([]models.SelectionRequest, error)
}

type SelectionHandler struct {
	service selectionApplicationService
}

func NewSelectionHandler(service selectionApplicationService) *SelectionHandler {
	return &SelectionHandler{service: service}
}

type createSelectionRequest struct {
	TrainerID       int64   `json:"trainer_id"`
	PackageID       int64   `json:"package_id"`
	PackageName     string  `json:"package_name"`
	PackagePrice    float64 `json:"package_price"`
	PackageDuration int     `json:"package_duration_weeks"`
	ClientMessage   *string `json:"client_message,omitempty"`
}

func (h *SelectionHandler) CreateRequest(c *fiber.Ctx) error {
	clientID, ok := h.requireRole(c, models.RoleClient)
	if !ok {
		return nil
	}

	var req createSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	request, err := h.service.CreateRequest(c.Context(), clientID, services.CreateSelectionInput{
		TrainerID:       req.TrainerID,
		PackageID:       req.PackageID,
		PackageName:     req.PackageName,
		PackagePrice:    req.PackagePrice,
		PackageDuration: req.PackageDuration,
		ClientMessage:   req.ClientMessage,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"error": "A live request with this trainer already exists"})
		}
		return mapServiceError(c, err, "Failed to create selection request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

func (h *SelectionHandler) GetRequest(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	request, err := h.service.GetRequest(c.Context(), userID, requestID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch selection request")
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *SelectionHandler) Accept(c *fiber.Ctx) error {
	return h.trainerAction(c, h.service.TrainerAccept)
}

func (h *SelectionHandler) Decline(c *fiber.Ctx) error {
	return h.trainerAction(c, h.service.TrainerDecline)
}

type suggestAlternativeRequest struct {
	PackageID       int64   `json:"package_id"`
	PackageName     string  `json:"package_name"`
	PackagePrice    float64 `json:"package_price"`
	PackageDuration int     `json:"package_duration_weeks"`
	TrainerResponse string  `json:"trainer_response"`
}

func (h *SelectionHandler) SuggestAlternative(c *fiber.Ctx) error {
	trainerID, ok := h.requireRole(c, models.RoleTrainer)
	if !ok {
		return nil
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	var req suggestAlternativeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	request, err := h.service.TrainerSuggestAlternative(c.Context(), trainerID, requestID, services.AlternativePackageInput{
		PackageID:       req.PackageID,
		PackageName:     req.PackageName,
		PackagePrice:    req.PackagePrice,
		PackageDuration: req.PackageDuration,
		TrainerResponse: req.TrainerResponse,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to suggest alternative")
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *SelectionHandler) AcceptAlternative(c *fiber.Ctx) error {
	clientID, ok := h.requireRole(c, models.RoleClient)
	if !ok {
		return nil
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	request, err := h.service.ClientAcceptAlternative(c.Context(), clientID, requestID)
	if err != nil {
		return mapServiceError(c, err, "Failed to accept alternative")
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *SelectionHandler) InitiatePayment(c *fiber.Ctx) error {
	clientID, ok := h.requireRole(c, models.RoleClient)
	if !ok {
		return nil
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	detail, err := h.service.InitiatePayment(c.Context(), clientID, requestID)
	if err != nil {
		return mapServiceError(c, err, "Failed to initiate payment")
	}

	return c.JSON(fiber.Map{
		"request":      detail.SelectionRequest,
		"payment":      detail.Payment,
		"checkout_url": detail.CheckoutURL,
	})
}

// ListRequests serves both sides: trainers see their inbox, clients see the
// history with one trainer.
func (h *SelectionHandler) ListRequests(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	switch actorRole(c) {
	case models.RoleTrainer:
		status := models.RequestStatus(c.Query("status"))
		requests, err := h.service.ListForTrainer(c.Context(), userID, status)
		if err != nil {
			return mapServiceError(c, err, "Failed to fetch selection requests")
		}
		return c.JSON(fiber.Map{"requests": requests})
	case models.RoleClient:
		trainerID := int64(parsePositiveInt(c.Query("trainer_id"), 0))
		if trainerID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trainer_id is required"})
		}
		requests, err := h.service.ListForPair(c.Context(), userID, trainerID)
		if err != nil {
			return mapServiceError(c, err, "Failed to fetch selection requests")
		}
		return c.JSON(fiber.Map{"requests": requests})
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
}

func (h *SelectionHandler) trainerAction(
	c *fiber.Ctx,
	action func(ctx context.Context, trainerID int64, requestID int64) (*models.SelectionRequest, error),
) error {
	trainerID, ok := h.requireRole(c, models.RoleTrainer)
	if !ok {
		return nil
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	request, err := action(c.Context(), trainerID, requestID)
	if err != nil {
		return mapServiceError(c, err, "Failed to update selection request")
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *SelectionHandler) requireRole(c *fiber.Ctx, role string) (int64, bool) {
	if actorRole(c) != role {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, false
	}
	userID, err := actorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, false
	}
	return userID, true
}
