package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type clientProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
	UpdateOnboarding(ctx context.Context, userID int64, input repository.ClientOnboardingInput) (*models.ClientProfile, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
}

type trainerProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TrainerProfile, error)
	UpdateOnboarding(ctx context.Context, userID int64, input repository.TrainerOnboardingInput) (*models.TrainerProfile, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	AppendGalleryURL(ctx context.Context, userID int64, fileURL string) error
}

type ProfileService struct {
	clientRepo  clientProfileStore
	trainerRepo trainerProfileStore
	storage     StorageService
}

func NewProfileService(
	clientRepo clientProfileStore,
	trainerRepo trainerProfileStore,
	storage StorageService,
) *ProfileService {
	return &ProfileService{
		clientRepo:  clientRepo,
		trainerRepo: trainerRepo,
		storage:     storage,
	}
}

func (s *ProfileService) GetClientProfile(ctx context.Context, userID int64) (*models.ClientProfile, error) {
	profile, err := s.clientRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetTrainerProfile(ctx context.Context, userID int64) (*models.TrainerProfile, error) {
	profile, err := s.trainerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// CompleteClientOnboarding records the client's goals and preferred coaching
// styles and marks onboarding done.
func (s *ProfileService) CompleteClientOnboarding(
	ctx context.Context,
	userID int64,
	input repository.ClientOnboardingInput,
) (*models.ClientProfile, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrValidation
	}
	if len(input.Goals) == 0 || len(input.CoachingStyleIDs) == 0 {
		return nil, ErrValidation
	}

	profile, err := s.clientRepo.UpdateOnboarding(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// CompleteTrainerOnboarding fills in the disclosable profile sections. A
// trainer does not appear in browse results until this has run.
func (s *ProfileService) CompleteTrainerOnboarding(
	ctx context.Context,
	userID int64,
	input repository.TrainerOnboardingInput,
) (*models.TrainerProfile, error) {
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Bio) == "" {
		return nil, ErrValidation
	}
	if strings.TrimSpace(input.WaysOfWorking) == "" || len(input.Specializations) == 0 {
		return nil, ErrValidation
	}
	if input.HourlyRate <= 0 {
		return nil, ErrValidation
	}
	if len(input.CoachingStyleIDs) == 0 {
		return nil, ErrValidation
	}

	profile, err := s.trainerRepo.UpdateOnboarding(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UploadAvatar(
	ctx context.Context,
	userID int64,
	role string,
	file multipart.File,
	filename string,
) (string, error) {
	objectName := fmt.Sprintf("%d_%d_%s", userID, time.Now().UnixNano(), sanitizeFilename(filename))
	fileURL, err := s.storage.UploadFile(ctx, file, objectName, FolderAvatars)
	if err != nil {
		return "", err
	}

	switch role {
	case models.RoleClient:
		err = s.clientRepo.UpdateAvatar(ctx, userID, fileURL)
	case models.RoleTrainer:
		err = s.trainerRepo.UpdateAvatar(ctx, userID, fileURL)
	default:
		return "", ErrForbidden
	}
	if err != nil {
		return "", err
	}
	return fileURL, nil
}

// UploadGalleryImage adds a photo to the trainer's gallery. The gallery is a
// locked disclosure category for most viewers; uploading never reveals it
// early because every read goes through the resolver.
func (s *ProfileService) UploadGalleryImage(
	ctx context.Context,
	trainerID int64,
	file multipart.File,
	filename string,
) (string, error) {
	objectName := fmt.Sprintf("%d_%d_%s", trainerID, time.Now().UnixNano(), sanitizeFilename(filename))
	fileURL, err := s.storage.UploadFile(ctx, file, objectName, FolderGallery)
	if err != nil {
		return "", err
	}

	if err := s.trainerRepo.AppendGalleryURL(ctx, trainerID, fileURL); err != nil {
		return "", err
	}
	return fileURL, nil
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
