package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type engagementApplicationService interface {
	View(ctx context.Context, clientID, trainerID int64) (*models.Engagement, error)
	ApplyEvent(ctx context.Context, clientID, trainerID int64, event services.StageEvent) (*models.Engagement, error)
	UpdateNotes(ctx context.Context, clientID, trainerID int64, notes *string) (*models.Engagement, error)
	List(ctx context.Context, actorID int64, role string) ([]models.Engagement, error)
}

type EngagementHandler struct {
	service engagementApplicationService
}

func NewEngagementHandler(service engagementApplicationService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// View returns (and lazily creates) the client's engagement with a trainer.
func (h *EngagementHandler) View(c *fiber.Ctx) error {
	clientID, trainerID, ok := h.clientAndTrainer(c)
	if !ok {
		return nil
	}

	engagement, err := h.service.View(c.Context(), clientID, trainerID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch engagement")
	}

	return c.JSON(fiber.Map{"engagement": engagement})
}

func (h *EngagementHandler) Like(c *fiber.Ctx) error {
	return h.applyClientEvent(c, services.EventLike)
}

func (h *EngagementHandler) Decline(c *fiber.Ctx) error {
	return h.applyPairEvent(c, services.EventDecline)
}

func (h *EngagementHandler) Unmatch(c *fiber.Ctx) error {
	return h.applyPairEvent(c, services.EventUnmatch)
}

type updateNotesRequest struct {
	Notes *string `json:"notes"`
}

func (h *EngagementHandler) UpdateNotes(c *fiber.Ctx) error {
	clientID, trainerID, ok := h.clientAndTrainer(c)
	if !ok {
		return nil
	}

	var req updateNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	engagement, err := h.service.UpdateNotes(c.Context(), clientID, trainerID, req.Notes)
	if err != nil {
		return mapServiceError(c, err, "Failed to update notes")
	}

	return c.JSON(fiber.Map{"engagement": engagement})
}

func (h *EngagementHandler) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	engagements, err := h.service.List(c.Context(), userID, actorRole(c))
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch engagements")
	}

	return c.JSON(fiber.Map{"engagements": engagements})
}

func (h *EngagementHandler) applyClientEvent(c *fiber.Ctx, event services.StageEvent) error {
	clientID, trainerID, ok := h.clientAndTrainer(c)
	if !ok {
		return nil
	}

	engagement, err := h.service.ApplyEvent(c.Context(), clientID, trainerID, event)
	if err != nil {
		return mapServiceError(c, err, "Failed to update engagement")
	}

	return c.JSON(fiber.Map{"engagement": engagement})
}

// applyPairEvent fires an event either side may send. Decline and unmatch
// belong here; likes stay client-only.
func (h *EngagementHandler) applyPairEvent(c *fiber.Ctx, event services.StageEvent) error {
	clientID, trainerID, ok := h.resolvePair(c)
	if !ok {
		return nil
	}

	engagement, err := h.service.ApplyEvent(c.Context(), clientID, trainerID, event)
	if err != nil {
		return mapServiceError(c, err, "Failed to update engagement")
	}

	return c.JSON(fiber.Map{"engagement": engagement})
}

// resolvePair maps the actor and the :id path param onto the engagement pair.
// A client addresses a trainer by id; a trainer addresses a client by id.
func (h *EngagementHandler) resolvePair(c *fiber.Ctx) (clientID int64, trainerID int64, ok bool) {
	actor, err := actorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, 0, false
	}
	other, err := parseIDParam(c, "id")
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		return 0, 0, false
	}

	switch actorRole(c) {
	case models.RoleClient:
		return actor, other, true
	case models.RoleTrainer:
		return other, actor, true
	default:
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, 0, false
	}
}

// clientAndTrainer authorizes the route for clients and resolves the pair.
// When ok is false the response has already been written.
func (h *EngagementHandler) clientAndTrainer(c *fiber.Ctx) (clientID int64, trainerID int64, ok bool) {
	if actorRole(c) != models.RoleClient {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, 0, false
	}
	clientID, err := actorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, 0, false
	}
	trainerID, err = parseIDParam(c, "id")
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
		return 0, 0, false
	}
	return clientID, trainerID, true
}
