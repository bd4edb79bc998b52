package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type styleAdminApplicationService interface {
	CreateClientStyle(ctx context.Context, input services.CreateStyleInput) (*models.ClientCoachingStyle, error)
	CreateTrainerStyle(ctx context.Context, input services.CreateStyleInput) (*models.TrainerCoachingStyle, error)
	DeactivateStyle(ctx context.Context, catalog string, styleID int64) error
	CreateMapping(ctx context.Context, clientStyleID, trainerStyleID int64, mappingType models.MappingType, weight *int) (*models.CoachingStyleMapping, error)
	UpdateMappingWeight(ctx context.Context, mappingID int64, weight int) (*models.CoachingStyleMapping, error)
	DeleteMapping(ctx context.Context, mappingID int64) error
	CatalogReport(ctx context.Context) (*services.StyleCatalogReport, error)
}

// StyleAdminHandler exposes the coaching-style catalog and mapping matrix.
// All routes sit behind the admin role.
type StyleAdminHandler struct {
	service styleAdminApplicationService
}

func NewStyleAdminHandler(service styleAdminApplicationService) *StyleAdminHandler {
	return &StyleAdminHandler{service: service}
}

type createStyleRequest struct {
	StyleKey     string  `json:"style_key"`
	Label        string  `json:"label"`
	Description  *string `json:"description,omitempty"`
	Emoji        *string `json:"emoji,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

func (h *StyleAdminHandler) CreateClientStyle(c *fiber.Ctx) error {
	var req createStyleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	style, err := h.service.CreateClientStyle(c.Context(), services.CreateStyleInput{
		StyleKey:     req.StyleKey,
		Label:        req.Label,
		Description:  req.Description,
		Emoji:        req.Emoji,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to create style")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"style": style})
}

func (h *StyleAdminHandler) CreateTrainerStyle(c *fiber.Ctx) error {
	var req createStyleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	style, err := h.service.CreateTrainerStyle(c.Context(), services.CreateStyleInput{
		StyleKey:     req.StyleKey,
		Label:        req.Label,
		Description:  req.Description,
		Emoji:        req.Emoji,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to create style")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"style": style})
}

func (h *StyleAdminHandler) DeactivateStyle(c *fiber.Ctx) error {
	catalog := c.Params("catalog")
	styleID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid style id"})
	}

	if err := h.service.DeactivateStyle(c.Context(), catalog, styleID); err != nil {
		return mapServiceError(c, err, "Failed to deactivate style")
	}

	return c.JSON(fiber.Map{"status": "deactivated"})
}

type createMappingRequest struct {
	ClientStyleID  int64  `json:"client_style_id"`
	TrainerStyleID int64  `json:"trainer_style_id"`
	MappingType    string `json:"mapping_type"`
	Weight         *int   `json:"weight,omitempty"`
}

func (h *StyleAdminHandler) CreateMapping(c *fiber.Ctx) error {
	var req createMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	mapping, err := h.service.CreateMapping(
		c.Context(),
		req.ClientStyleID,
		req.TrainerStyleID,
		models.MappingType(req.MappingType),
		req.Weight,
	)
	if err != nil {
		return mapServiceError(c, err, "Failed to create mapping")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mapping": mapping})
}

type updateMappingWeightRequest struct {
	Weight int `json:"weight"`
}

func (h *StyleAdminHandler) UpdateMappingWeight(c *fiber.Ctx) error {
	mappingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mapping id"})
	}

	var req updateMappingWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	mapping, err := h.service.UpdateMappingWeight(c.Context(), mappingID, req.Weight)
	if err != nil {
		return mapServiceError(c, err, "Failed to update mapping")
	}

	return c.JSON(fiber.Map{"mapping": mapping})
}

func (h *StyleAdminHandler) DeleteMapping(c *fiber.Ctx) error {
	mappingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mapping id"})
	}

	if err := h.service.DeleteMapping(c.Context(), mappingID); err != nil {
		return mapServiceError(c, err, "Failed to delete mapping")
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *StyleAdminHandler) CatalogReport(c *fiber.Ctx) error {
	report, err := h.service.CatalogReport(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Failed to build catalog report")
	}

	return c.JSON(report)
}
