package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type trainerBrowser interface {
	ListTrainers(ctx context.Context, filter repository.TrainerListFilter, isGuest bool) ([]models.TrainerDetailView, int, error)
	GetTrainerDetail(ctx context.Context, viewerID int64, viewerRole string, trainerID int64) (*models.TrainerDetailView, error)
	PreviewTrainer(ctx context.Context, trainerID int64, stage models.Stage) (*models.TrainerDetailView, error)
}

type clientProfileFetcher interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
}

type trainerMatcher interface {
	GetMatchedTrainers(ctx context.Context, clientProfile *models.ClientProfile, limit int) ([]models.TrainerWithScore, error)
}

type TrainerDiscoveryHandler struct {
	discovery    trainerBrowser
	clientRepo   clientProfileFetcher
	matchService trainerMatcher
}

func NewTrainerDiscoveryHandler(
	discovery trainerBrowser,
	clientRepo clientProfileFetcher,
	matchService trainerMatcher,
) *TrainerDiscoveryHandler {
	return &TrainerDiscoveryHandler{
		discovery:    discovery,
		clientRepo:   clientRepo,
		matchService: matchService,
	}
}

// ListTrainers serves the browse page. Works for guests; every card is
// already disclosure-filtered.
func (h *TrainerDiscoveryHandler) ListTrainers(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_rating must be a valid non-negative number"})
	}
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_price must be a valid non-negative number"})
	}

	_, viewerErr := actorID(c)
	isGuest := viewerErr != nil

	views, total, err := h.discovery.ListTrainers(c.Context(), repository.TrainerListFilter{
		Specialization: strings.TrimSpace(c.Query("specialization")),
		MinRating:      minRating,
		MaxPrice:       maxPrice,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	}, isGuest)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainers"})
	}

	return c.JSON(fiber.Map{
		"trainers":   views,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

// GetRecommendedTrainers ranks trainers by coaching-style fit for the
// signed-in client.
func (h *TrainerDiscoveryHandler) GetRecommendedTrainers(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleClient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	clientID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	clientProfile, err := h.clientRepo.GetByUserID(c.Context(), clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client profile"})
	}

	trainers, err := h.matchService.GetMatchedTrainers(c.Context(), clientProfile, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch recommended trainers"})
	}

	return c.JSON(fiber.Map{"trainers": trainers})
}

// GetTrainerDetail returns the trainer profile resolved to the viewer's
// stage: guests and strangers see teasers, matched clients see more.
func (h *TrainerDiscoveryHandler) GetTrainerDetail(c *fiber.Ctx) error {
	trainerID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	viewerID, viewerErr := actorID(c)
	if viewerErr != nil {
		viewerID = 0
	}

	view, err := h.discovery.GetTrainerDetail(c.Context(), viewerID, actorRole(c), trainerID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch trainer")
	}

	return c.JSON(fiber.Map{"trainer": view})
}

// PreviewTrainer renders a trainer profile at the stage given in the query,
// bypassing engagement lookup. Admin-only; the route carries the role guard.
func (h *TrainerDiscoveryHandler) PreviewTrainer(c *fiber.Ctx) error {
	trainerID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	stage, ok := models.ParseStage(c.Query("stage"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid stage"})
	}

	view, err := h.discovery.PreviewTrainer(c.Context(), trainerID, stage)
	if err != nil {
		return mapServiceError(c, err, "Failed to preview trainer")
	}

	return c.JSON(fiber.Map{"trainer": view, "stage": stage})
}
