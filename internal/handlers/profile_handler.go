package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type profileApplicationService interface {
	GetClientProfile(ctx context.Context, userID int64) (*models.ClientProfile, error)
	GetTrainerProfile(ctx context.Context, userID int64) (*models.TrainerProfile, error)
	CompleteClientOnboarding(ctx context.Context, userID int64, input repository.ClientOnboardingInput) (*models.ClientProfile, error)
	CompleteTrainerOnboarding(ctx context.Context, userID int64, input repository.TrainerOnboardingInput) (*models.TrainerProfile, error)
	UploadAvatar(ctx context.Context, userID int64, role string, file multipart.File, filename string) (string, error)
	UploadGalleryImage(ctx context.Context, trainerID int64, file multipart.File, filename string) (string, error)
}

type ProfileHandler struct {
	service profileApplicationService
}

func NewProfileHandler(service profileApplicationService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetMyProfile returns the caller's own profile, unfiltered. Disclosure only
// applies to viewing someone else.
func (h *ProfileHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	switch actorRole(c) {
	case models.RoleClient:
		profile, err := h.service.GetClientProfile(c.Context(), userID)
		if err != nil {
			return mapServiceError(c, err, "Failed to fetch profile")
		}
		return c.JSON(fiber.Map{"profile": profile})
	case models.RoleTrainer:
		profile, err := h.service.GetTrainerProfile(c.Context(), userID)
		if err != nil {
			return mapServiceError(c, err, "Failed to fetch profile")
		}
		return c.JSON(fiber.Map{"profile": profile})
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
}

type clientOnboardingRequest struct {
	FullName         string   `json:"full_name"`
	Goals            []string `json:"goals"`
	CoachingStyleIDs []int64  `json:"coaching_style_ids"`
}

func (h *ProfileHandler) CompleteClientOnboarding(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleClient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req clientOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.service.CompleteClientOnboarding(c.Context(), userID, repository.ClientOnboardingInput{
		FullName:         req.FullName,
		Goals:            req.Goals,
		CoachingStyleIDs: req.CoachingStyleIDs,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to complete onboarding")
	}

	return c.JSON(fiber.Map{"profile": profile})
}

type trainerOnboardingRequest struct {
	FullName          string   `json:"full_name"`
	Bio               string   `json:"bio"`
	WaysOfWorking     string   `json:"ways_of_working"`
	Specializations   []string `json:"specializations"`
	HourlyRate        float64  `json:"hourly_rate"`
	DiscoveryCallNote string   `json:"discovery_call_note"`
	CoachingStyleIDs  []int64  `json:"coaching_style_ids"`
}

func (h *ProfileHandler) CompleteTrainerOnboarding(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req trainerOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.service.CompleteTrainerOnboarding(c.Context(), userID, repository.TrainerOnboardingInput{
		FullName:          req.FullName,
		Bio:               req.Bio,
		WaysOfWorking:     req.WaysOfWorking,
		Specializations:   req.Specializations,
		HourlyRate:        req.HourlyRate,
		DiscoveryCallNote: req.DiscoveryCallNote,
		CoachingStyleIDs:  req.CoachingStyleIDs,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to complete onboarding")
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read upload"})
	}
	defer file.Close()

	fileURL, err := h.service.UploadAvatar(c.Context(), userID, actorRole(c), file, fileHeader.Filename)
	if err != nil {
		return mapServiceError(c, err, "Failed to upload avatar")
	}

	return c.JSON(fiber.Map{"avatar_url": fileURL})
}

func (h *ProfileHandler) UploadGalleryImage(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read upload"})
	}
	defer file.Close()

	fileURL, err := h.service.UploadGalleryImage(c.Context(), trainerID, file, fileHeader.Filename)
	if err != nil {
		return mapServiceError(c, err, "Failed to upload gallery image")
	}

	return c.JSON(fiber.Map{"file_url": fileURL})
}
