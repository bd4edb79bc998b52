package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

func discoveryProfile() *models.TrainerProfile {
	fullName := "Maria Keller"
	bio := "Strength coach"
	ways := "Weekly check-ins"
	note := "Free 30 minute intro"
	rate := 65.0
	rating := 4.7
	specializations := []string{"strength", "mobility"}
	return &models.TrainerProfile{
		ID:                3,
		UserID:            9,
		FullName:          &fullName,
		Bio:               &bio,
		WaysOfWorking:     &ways,
		Specializations:   &specializations,
		HourlyRate:        &rate,
		DiscoveryCallNote: &note,
		Rating:            &rating,
		TotalReviews:      12,
		GalleryURLs:       []string{"https://cdn.example/a.jpg"},
	}
}

func sectionByCategory(t *testing.T, view *models.TrainerDetailView, category models.ContentCategory) models.TrainerSection {
	t.Helper()
	for _, section := range view.Sections {
		if section.Category == category {
			return section
		}
	}
	t.Fatalf("view missing section %s", category)
	return models.TrainerSection{}
}

func TestRenderTrainerViewBrowsingShowsFirstNameOnly(t *testing.T) {
	view := RenderTrainerView(discoveryProfile(), models.StageBrowsing, false)

	if len(view.Sections) != len(Categories()) {
		t.Fatalf("expected a section per category, got %d", len(view.Sections))
	}

	basic := sectionByCategory(t, view, models.CategoryBasicInformation)
	if basic.Visibility != models.VisibilityTeaser {
		t.Fatalf("basic info at browsing should tease, got %s", basic.Visibility)
	}
	content, ok := basic.Content.(map[string]any)
	if !ok {
		t.Fatalf("expected teaser content map, got %T", basic.Content)
	}
	if content["first_name"] != "Maria" {
		t.Fatalf("expected first name only, got %v", content["first_name"])
	}
	if _, leaked := content["full_name"]; leaked {
		t.Fatal("full name leaked at browsing stage")
	}

	pricing := sectionByCategory(t, view, models.CategoryPricingDiscovery)
	if pricing.Visibility != models.VisibilityConcealed || pricing.Content != nil {
		t.Fatalf("pricing must be concealed at browsing, got %s with %v", pricing.Visibility, pricing.Content)
	}
	if pricing.Fallback == "" {
		t.Fatal("concealed pricing should carry fallback copy")
	}
}

func TestRenderTrainerViewMatchedTeasesPricingWithoutRate(t *testing.T) {
	view := RenderTrainerView(discoveryProfile(), models.StageMatched, false)

	pricing := sectionByCategory(t, view, models.CategoryPricingDiscovery)
	if pricing.Visibility != models.VisibilityTeaser {
		t.Fatalf("pricing at matched should tease, got %s", pricing.Visibility)
	}
	content := pricing.Content.(map[string]any)
	if _, leaked := content["hourly_rate"]; leaked {
		t.Fatal("hourly rate leaked before discovery call completed")
	}
	if content["discovery_call_note"] == nil {
		t.Fatal("teaser should include the discovery call note")
	}
}

func TestRenderTrainerViewDiscoveryCompletedUnlocksEverything(t *testing.T) {
	view := RenderTrainerView(discoveryProfile(), models.StageDiscoveryCompleted, false)

	for _, category := range Categories() {
		section := sectionByCategory(t, view, category)
		if section.Visibility != models.VisibilityVisible {
			t.Fatalf("%s should be visible after discovery call, got %s", category, section.Visibility)
		}
		if section.Fallback != "" {
			t.Fatalf("%s should carry no fallback when visible", category)
		}
	}

	gallery := sectionByCategory(t, view, models.CategoryGallery).Content.(map[string]any)
	urls, ok := gallery["gallery_urls"].([]string)
	if !ok || len(urls) != 1 {
		t.Fatalf("expected gallery urls, got %v", gallery["gallery_urls"])
	}
}

func TestRenderTrainerViewGuestSeesOnlyBasicTeaser(t *testing.T) {
	// A forced later stage must not help a guest.
	view := RenderTrainerView(discoveryProfile(), models.StageActiveClient, true)

	for _, section := range view.Sections {
		if section.Category == models.CategoryBasicInformation {
			if section.Visibility != models.VisibilityTeaser {
				t.Fatalf("guest basic info should tease, got %s", section.Visibility)
			}
			continue
		}
		if section.Visibility != models.VisibilityConcealed {
			t.Fatalf("guest %s should be concealed, got %s", section.Category, section.Visibility)
		}
	}
}

type stubTrainerProfileReader struct {
	profile *models.TrainerProfile
	listed  []models.TrainerProfile
	filter  repository.TrainerListFilter
}

func (s *stubTrainerProfileReader) GetByUserID(_ context.Context, userID int64) (*models.TrainerProfile, error) {
	if s.profile == nil || s.profile.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubTrainerProfileReader) List(_ context.Context, filter repository.TrainerListFilter) ([]models.TrainerProfile, int, error) {
	s.filter = filter
	return s.listed, len(s.listed), nil
}

type stubStageResolver struct {
	stage models.Stage
}

func (s *stubStageResolver) StageForViewer(_ context.Context, _ int64, _ string, _ int64) (models.Stage, error) {
	return s.stage, nil
}

func TestGetTrainerDetailResolvesViewerStage(t *testing.T) {
	service := NewDiscoveryService(
		&stubTrainerProfileReader{profile: discoveryProfile()},
		&stubStageResolver{stage: models.StageDiscoveryCompleted},
	)

	view, err := service.GetTrainerDetail(context.Background(), 5, models.RoleClient, 9)
	if err != nil {
		t.Fatalf("GetTrainerDetail: %v", err)
	}
	if view.Stage != models.StageDiscoveryCompleted {
		t.Fatalf("expected the resolved stage, got %s", view.Stage)
	}
	pricing := sectionByCategory(t, view, models.CategoryPricingDiscovery)
	if pricing.Visibility != models.VisibilityVisible {
		t.Fatalf("expected pricing unlocked, got %s", pricing.Visibility)
	}
}

func TestPreviewTrainerForcesStage(t *testing.T) {
	service := NewDiscoveryService(
		&stubTrainerProfileReader{profile: discoveryProfile()},
		&stubStageResolver{stage: models.StageBrowsing},
	)

	view, err := service.PreviewTrainer(context.Background(), 9, models.StageActiveClient)
	if err != nil {
		t.Fatalf("PreviewTrainer: %v", err)
	}
	if view.Stage != models.StageActiveClient {
		t.Fatalf("expected the forced stage, got %s", view.Stage)
	}
	reviews := sectionByCategory(t, view, models.CategoryReviews)
	if reviews.Visibility != models.VisibilityVisible {
		t.Fatalf("expected reviews unlocked, got %s", reviews.Visibility)
	}
}

func TestPreviewTrainerUnknownTrainer(t *testing.T) {
	service := NewDiscoveryService(&stubTrainerProfileReader{}, &stubStageResolver{})

	if _, err := service.PreviewTrainer(context.Background(), 404, models.StageAgreed); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTrainerDetailUnknownTrainer(t *testing.T) {
	service := NewDiscoveryService(&stubTrainerProfileReader{}, &stubStageResolver{})

	if _, err := service.GetTrainerDetail(context.Background(), 5, models.RoleClient, 404); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTrainersClampsLimitAndRendersBrowseCards(t *testing.T) {
	reader := &stubTrainerProfileReader{listed: []models.TrainerProfile{*discoveryProfile()}}
	service := NewDiscoveryService(reader, &stubStageResolver{stage: models.StageActiveClient})

	views, total, err := service.ListTrainers(context.Background(), repository.TrainerListFilter{Limit: 500}, false)
	if err != nil {
		t.Fatalf("ListTrainers: %v", err)
	}
	if reader.filter.Limit != 20 {
		t.Fatalf("expected limit clamped to 20, got %d", reader.filter.Limit)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected one card, got %d/%d", len(views), total)
	}
	// Browse cards always render at browsing, whatever the pair's stage.
	if views[0].Stage != models.StageBrowsing {
		t.Fatalf("browse card stage = %s, want browsing", views[0].Stage)
	}
}
