package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type trainerProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TrainerProfile, error)
	List(ctx context.Context, filter repository.TrainerListFilter) ([]models.TrainerProfile, int, error)
}

type stageResolver interface {
	StageForViewer(ctx context.Context, viewerID int64, viewerRole string, trainerID int64) (models.Stage, error)
}

// DiscoveryService serves the trainer browse and detail surfaces. Every
// profile it returns has been run through the disclosure resolver for the
// viewer's stage, so handlers never see unfiltered trainer data.
type DiscoveryService struct {
	trainerRepo trainerProfileReader
	stages      stageResolver
}

func NewDiscoveryService(trainerRepo trainerProfileReader, stages stageResolver) *DiscoveryService {
	return &DiscoveryService{trainerRepo: trainerRepo, stages: stages}
}

// ListTrainers returns a browse page. Guests and clients both get teaser
// cards only; the stage-aware view is the detail endpoint.
func (s *DiscoveryService) ListTrainers(
	ctx context.Context,
	filter repository.TrainerListFilter,
	isGuest bool,
) ([]models.TrainerDetailView, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	profiles, total, err := s.trainerRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.TrainerDetailView, 0, len(profiles))
	for i := range profiles {
		stage := models.StageBrowsing
		views = append(views, *RenderTrainerView(&profiles[i], stage, isGuest))
	}
	return views, total, nil
}

// GetTrainerDetail resolves the viewer's stage with this trainer and renders
// the profile at that stage's reveal levels.
func (s *DiscoveryService) GetTrainerDetail(
	ctx context.Context,
	viewerID int64,
	viewerRole string,
	trainerID int64,
) (*models.TrainerDetailView, error) {
	if trainerID <= 0 {
		return nil, ErrValidation
	}

	profile, err := s.trainerRepo.GetByUserID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isGuest := viewerID <= 0
	stage := models.StageBrowsing
	if !isGuest {
		stage, err = s.stages.StageForViewer(ctx, viewerID, viewerRole, trainerID)
		if err != nil {
			return nil, err
		}
	}

	return RenderTrainerView(profile, stage, isGuest), nil
}

// PreviewTrainer renders a trainer profile at a caller-chosen stage without
// consulting any engagement. Admin tooling uses it to inspect what a client
// at that stage would see.
func (s *DiscoveryService) PreviewTrainer(
	ctx context.Context,
	trainerID int64,
	stage models.Stage,
) (*models.TrainerDetailView, error) {
	if trainerID <= 0 {
		return nil, ErrValidation
	}

	profile, err := s.trainerRepo.GetByUserID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return RenderTrainerView(profile, stage, false), nil
}

// RenderTrainerView builds the stage-resolved view of one trainer profile.
// Withheld categories carry deterministic fallback copy instead of data.
func RenderTrainerView(profile *models.TrainerProfile, stage models.Stage, isGuest bool) *models.TrainerDetailView {
	view := &models.TrainerDetailView{
		TrainerID: profile.UserID,
		Stage:     stage,
		Sections:  make([]models.TrainerSection, 0, len(Categories())),
	}

	for _, category := range Categories() {
		visibility := VisibilityOf(stage, category, isGuest)
		section := models.TrainerSection{
			Category:   category,
			Visibility: visibility,
			Fallback:   FallbackContent(category, visibility),
		}
		if content := sectionContent(profile, category, visibility); content != nil {
			section.Content = content
		}
		view.Sections = append(view.Sections, section)
	}

	return view
}

// sectionContent returns the data a category exposes at the given reveal
// level; nil when the category is fully withheld.
func sectionContent(profile *models.TrainerProfile, category models.ContentCategory, visibility models.Visibility) any {
	if visibility == models.VisibilityConcealed {
		return nil
	}

	switch category {
	case models.CategoryBasicInformation:
		if visibility == models.VisibilityTeaser {
			return map[string]any{
				"first_name": firstName(profile.FullName),
				"avatar_url": profile.AvatarURL,
			}
		}
		return map[string]any{
			"full_name":  profile.FullName,
			"avatar_url": profile.AvatarURL,
		}
	case models.CategoryWaysOfWorking:
		if visibility == models.VisibilityTeaser {
			return map[string]any{
				"specializations": profile.Specializations,
			}
		}
		return map[string]any{
			"bio":             profile.Bio,
			"ways_of_working": profile.WaysOfWorking,
			"specializations": profile.Specializations,
		}
	case models.CategoryPricingDiscovery:
		if visibility == models.VisibilityTeaser {
			return map[string]any{
				"discovery_call_note": profile.DiscoveryCallNote,
			}
		}
		return map[string]any{
			"hourly_rate":         profile.HourlyRate,
			"discovery_call_note": profile.DiscoveryCallNote,
		}
	case models.CategoryGallery:
		if visibility != models.VisibilityVisible {
			return nil
		}
		return map[string]any{
			"gallery_urls": profile.GalleryURLs,
		}
	case models.CategoryReviews:
		if visibility == models.VisibilityTeaser {
			return map[string]any{
				"total_reviews": profile.TotalReviews,
			}
		}
		return map[string]any{
			"rating":        profile.Rating,
			"total_reviews": profile.TotalReviews,
		}
	default:
		return nil
	}
}

func firstName(fullName *string) string {
	if fullName == nil {
		return ""
	}
	parts := strings.Fields(*fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
