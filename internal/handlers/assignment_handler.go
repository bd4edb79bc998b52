package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type assignmentApplicationService interface {
	Assign(ctx context.Context, trainerID int64, input services.AssignTemplateInput) (*models.TemplateAssignment, error)
	ExpireActive(ctx context.Context, trainerID int64, clientID int64, reason string) (*models.TemplateAssignment, error)
	History(ctx context.Context, actorID int64, role string, clientID int64) ([]models.TemplateAssignment, error)
	ActiveForClient(ctx context.Context, clientID int64) (*models.TemplateAssignment, error)
}

type AssignmentHandler struct {
	service assignmentApplicationService
}

func NewAssignmentHandler(service assignmentApplicationService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

type assignTemplateRequest struct {
	ClientID       int64  `json:"client_id"`
	TemplateName   string `json:"template_name"`
	TemplateBaseID int64  `json:"template_base_id"`
	Replace        bool   `json:"replace"`
	ReplaceReason  string `json:"replace_reason"`
}

func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req assignTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	assignment, err := h.service.Assign(c.Context(), trainerID, services.AssignTemplateInput{
		ClientID:       req.ClientID,
		TemplateName:   req.TemplateName,
		TemplateBaseID: req.TemplateBaseID,
		Replace:        req.Replace,
		ReplaceReason:  req.ReplaceReason,
	})
	if err != nil {
		var conflict *services.AssignmentConflictError
		if errors.As(err, &conflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":               "Client already has an active template",
				"existing_assignment": conflict.Existing,
			})
		}
		return mapServiceError(c, err, "Failed to assign template")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignment": assignment})
}

type expireAssignmentRequest struct {
	ClientID int64  `json:"client_id"`
	Reason   string `json:"reason"`
}

func (h *AssignmentHandler) Expire(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req expireAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	assignment, err := h.service.ExpireActive(c.Context(), trainerID, req.ClientID, req.Reason)
	if err != nil {
		return mapServiceError(c, err, "Failed to expire assignment")
	}

	return c.JSON(fiber.Map{"assignment": assignment})
}

func (h *AssignmentHandler) History(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	role := actorRole(c)
	clientID := userID
	if role != models.RoleClient {
		clientID, err = parseIDParam(c, "clientId")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
		}
	}

	assignments, err := h.service.History(c.Context(), userID, role, clientID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch assignments")
	}

	return c.JSON(fiber.Map{"assignments": assignments})
}

func (h *AssignmentHandler) Active(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleClient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	clientID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	assignment, err := h.service.ActiveForClient(c.Context(), clientID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch active assignment")
	}

	return c.JSON(fiber.Map{"assignment": assignment})
}
