package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type stubClientProfileStore struct {
	profile   *models.ClientProfile
	lastInput repository.ClientOnboardingInput
	avatarURL string
}

func (s *stubClientProfileStore) GetByUserID(_ context.Context, _ int64) (*models.ClientProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubClientProfileStore) UpdateOnboarding(_ context.Context, userID int64, input repository.ClientOnboardingInput) (*models.ClientProfile, error) {
	s.lastInput = input
	return &models.ClientProfile{UserID: userID, FullName: &input.FullName, OnboardingComplete: true}, nil
}

func (s *stubClientProfileStore) UpdateAvatar(_ context.Context, _ int64, avatarURL string) error {
	s.avatarURL = avatarURL
	return nil
}

type stubTrainerProfileStore struct {
	profile    *models.TrainerProfile
	lastInput  repository.TrainerOnboardingInput
	avatarURL  string
	galleryURL string
}

func (s *stubTrainerProfileStore) GetByUserID(_ context.Context, _ int64) (*models.TrainerProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubTrainerProfileStore) UpdateOnboarding(_ context.Context, userID int64, input repository.TrainerOnboardingInput) (*models.TrainerProfile, error) {
	s.lastInput = input
	return &models.TrainerProfile{UserID: userID, FullName: &input.FullName, OnboardingComplete: true}, nil
}

func (s *stubTrainerProfileStore) UpdateAvatar(_ context.Context, _ int64, avatarURL string) error {
	s.avatarURL = avatarURL
	return nil
}

func (s *stubTrainerProfileStore) AppendGalleryURL(_ context.Context, _ int64, fileURL string) error {
	s.galleryURL = fileURL
	return nil
}

type stubStorage struct {
	lastObjectName string
	lastFolder     string
}

func (s *stubStorage) UploadFile(_ context.Context, _ multipart.File, filename, folder string) (string, error) {
	s.lastObjectName = filename
	s.lastFolder = folder
	return "https://cdn.example/" + folder + "/" + filename, nil
}

func (s *stubStorage) DeleteFile(_ context.Context, _ string) error { return nil }

func (s *stubStorage) GetSignedURL(_ context.Context, fileURL string) (string, error) {
	return fileURL, nil
}

func TestCompleteClientOnboardingRequiresGoalsAndStyles(t *testing.T) {
	service := NewProfileService(&stubClientProfileStore{}, &stubTrainerProfileStore{}, &stubStorage{})

	cases := []repository.ClientOnboardingInput{
		{FullName: "", Goals: []string{"strength"}, CoachingStyleIDs: []int64{1}},
		{FullName: "Ana", Goals: nil, CoachingStyleIDs: []int64{1}},
		{FullName: "Ana", Goals: []string{"strength"}, CoachingStyleIDs: nil},
	}
	for i, input := range cases {
		if _, err := service.CompleteClientOnboarding(context.Background(), 42, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}

	profile, err := service.CompleteClientOnboarding(context.Background(), 42, repository.ClientOnboardingInput{
		FullName:         "Ana",
		Goals:            []string{"strength"},
		CoachingStyleIDs: []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("CompleteClientOnboarding: %v", err)
	}
	if !profile.OnboardingComplete {
		t.Fatal("expected onboarding marked complete")
	}
}

func TestCompleteTrainerOnboardingValidatesProfile(t *testing.T) {
	service := NewProfileService(&stubClientProfileStore{}, &stubTrainerProfileStore{}, &stubStorage{})

	valid := repository.TrainerOnboardingInput{
		FullName:         "Maria Keller",
		Bio:              "Strength coach",
		WaysOfWorking:    "Weekly check-ins",
		Specializations:  []string{"strength"},
		HourlyRate:       65,
		CoachingStyleIDs: []int64{3},
	}

	broken := valid
	broken.HourlyRate = 0
	if _, err := service.CompleteTrainerOnboarding(context.Background(), 7, broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero rate: expected ErrValidation, got %v", err)
	}

	broken = valid
	broken.Specializations = nil
	if _, err := service.CompleteTrainerOnboarding(context.Background(), 7, broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("no specializations: expected ErrValidation, got %v", err)
	}

	profile, err := service.CompleteTrainerOnboarding(context.Background(), 7, valid)
	if err != nil {
		t.Fatalf("CompleteTrainerOnboarding: %v", err)
	}
	if !profile.OnboardingComplete {
		t.Fatal("expected onboarding marked complete")
	}
}

func TestUploadAvatarRoutesByRole(t *testing.T) {
	clients := &stubClientProfileStore{}
	trainers := &stubTrainerProfileStore{}
	storage := &stubStorage{}
	service := NewProfileService(clients, trainers, storage)

	url, err := service.UploadAvatar(context.Background(), 42, models.RoleClient, nil, "Me & You.PNG")
	if err != nil {
		t.Fatalf("UploadAvatar client: %v", err)
	}
	if clients.avatarURL != url || trainers.avatarURL != "" {
		t.Fatalf("avatar stored on wrong profile: client %q trainer %q", clients.avatarURL, trainers.avatarURL)
	}
	if storage.lastFolder != FolderAvatars {
		t.Fatalf("expected avatars folder, got %q", storage.lastFolder)
	}
	if strings.Contains(storage.lastObjectName, " ") || strings.Contains(storage.lastObjectName, "&") {
		t.Fatalf("object name not sanitized: %q", storage.lastObjectName)
	}

	if _, err := service.UploadAvatar(context.Background(), 1, models.RoleAdmin, nil, "x.png"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin avatar: expected ErrForbidden, got %v", err)
	}
}

func TestUploadGalleryImageAppendsToTrainer(t *testing.T) {
	trainers := &stubTrainerProfileStore{}
	storage := &stubStorage{}
	service := NewProfileService(&stubClientProfileStore{}, trainers, storage)

	url, err := service.UploadGalleryImage(context.Background(), 7, nil, "gym.jpg")
	if err != nil {
		t.Fatalf("UploadGalleryImage: %v", err)
	}
	if trainers.galleryURL != url {
		t.Fatalf("gallery url not appended, got %q", trainers.galleryURL)
	}
	if storage.lastFolder != FolderGallery {
		t.Fatalf("expected gallery folder, got %q", storage.lastFolder)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Me & You.PNG": "me___you.png",
		"  plan.pdf ":  "plan.pdf",
		"":             "upload",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
