package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type stubStyleRepo struct {
	existingKeys map[string]bool

	createdClient  *repository.CreateStyleInput
	createdTrainer *repository.CreateStyleInput
	createdMapping *models.CoachingStyleMapping
	deactivated    []string
}

func (s *stubStyleRepo) KeyExists(_ context.Context, catalog, styleKey string) (bool, error) {
	return s.existingKeys[catalog+"/"+styleKey], nil
}

func (s *stubStyleRepo) CreateClientStyle(_ context.Context, input repository.CreateStyleInput) (*models.ClientCoachingStyle, error) {
	s.createdClient = &input
	return &models.ClientCoachingStyle{ID: 1, StyleKey: input.StyleKey, Label: input.Label}, nil
}

func (s *stubStyleRepo) CreateTrainerStyle(_ context.Context, input repository.CreateStyleInput) (*models.TrainerCoachingStyle, error) {
	s.createdTrainer = &input
	return &models.TrainerCoachingStyle{ID: 1, StyleKey: input.StyleKey, Label: input.Label}, nil
}

func (s *stubStyleRepo) Deactivate(_ context.Context, catalog string, styleID int64) error {
	s.deactivated = append(s.deactivated, catalog)
	return nil
}

func (s *stubStyleRepo) ListClientStyles(_ context.Context, _ bool) ([]models.ClientCoachingStyle, error) {
	return []models.ClientCoachingStyle{{ID: 1, StyleKey: "supportive"}}, nil
}

func (s *stubStyleRepo) ListTrainerStyles(_ context.Context, _ bool) ([]models.TrainerCoachingStyle, error) {
	return []models.TrainerCoachingStyle{{ID: 2, StyleKey: "encouraging"}, {ID: 3, StyleKey: "drill_sergeant"}}, nil
}

func (s *stubStyleRepo) CreateMapping(_ context.Context, clientStyleID, trainerStyleID int64, mappingType models.MappingType, weight int) (*models.CoachingStyleMapping, error) {
	m := &models.CoachingStyleMapping{
		ID:             7,
		ClientStyleID:  clientStyleID,
		TrainerStyleID: trainerStyleID,
		Weight:         weight,
		MappingType:    mappingType,
	}
	s.createdMapping = m
	return m, nil
}

func (s *stubStyleRepo) UpdateMappingWeight(_ context.Context, mappingID int64, weight int) (*models.CoachingStyleMapping, error) {
	return &models.CoachingStyleMapping{ID: mappingID, Weight: weight}, nil
}

func (s *stubStyleRepo) DeleteMapping(_ context.Context, _ int64) error { return nil }

func (s *stubStyleRepo) ListMappings(_ context.Context) ([]models.CoachingStyleMapping, error) {
	return []models.CoachingStyleMapping{{ID: 7, ClientStyleID: 1, TrainerStyleID: 2, Weight: 100}}, nil
}

func (s *stubStyleRepo) ListUnmappedTrainerStyleIDs(_ context.Context) ([]int64, error) {
	return []int64{3}, nil
}

func TestCreateClientStyleTrimsAndStores(t *testing.T) {
	repo := &stubStyleRepo{}
	service := NewStyleAdminService(repo)

	style, err := service.CreateClientStyle(context.Background(), CreateStyleInput{
		StyleKey: "  supportive  ",
		Label:    "  Supportive ",
	})
	if err != nil {
		t.Fatalf("CreateClientStyle: %v", err)
	}
	if style.StyleKey != "supportive" || style.Label != "Supportive" {
		t.Fatalf("expected trimmed fields, got %q / %q", style.StyleKey, style.Label)
	}
	if repo.createdClient == nil {
		t.Fatal("expected repository create call")
	}
}

func TestCreateStyleRejectsBadKeys(t *testing.T) {
	service := NewStyleAdminService(&stubStyleRepo{})

	for _, key := range []string{"", "Supportive", "has-dash", "9starts_with_digit", "has space"} {
		_, err := service.CreateClientStyle(context.Background(), CreateStyleInput{
			StyleKey: key,
			Label:    "Label",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("key %q: expected ErrValidation, got %v", key, err)
		}
	}
}

func TestCreateStyleDuplicateKeyConflicts(t *testing.T) {
	repo := &stubStyleRepo{existingKeys: map[string]bool{"trainer/encouraging": true}}
	service := NewStyleAdminService(repo)

	_, err := service.CreateTrainerStyle(context.Background(), CreateStyleInput{
		StyleKey: "encouraging",
		Label:    "Encouraging",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The same key is fine in the other catalog.
	if _, err := service.CreateClientStyle(context.Background(), CreateStyleInput{
		StyleKey: "encouraging",
		Label:    "Encouraging",
	}); err != nil {
		t.Fatalf("same key in client catalog should pass, got %v", err)
	}
}

func TestCreateMappingDefaultsWeightFromType(t *testing.T) {
	repo := &stubStyleRepo{}
	service := NewStyleAdminService(repo)

	m, err := service.CreateMapping(context.Background(), 1, 2, models.MappingSecondary, nil)
	if err != nil {
		t.Fatalf("CreateMapping: %v", err)
	}
	if m.Weight != models.MappingSecondary.DefaultWeight() {
		t.Fatalf("expected default secondary weight %d, got %d", models.MappingSecondary.DefaultWeight(), m.Weight)
	}

	override := 42
	m, err = service.CreateMapping(context.Background(), 1, 2, models.MappingPrimary, &override)
	if err != nil {
		t.Fatalf("CreateMapping override: %v", err)
	}
	if m.Weight != 42 {
		t.Fatalf("expected explicit weight to win, got %d", m.Weight)
	}
}

func TestCreateMappingAcceptsTertiary(t *testing.T) {
	repo := &stubStyleRepo{}
	service := NewStyleAdminService(repo)

	m, err := service.CreateMapping(context.Background(), 1, 3, models.MappingTertiary, nil)
	if err != nil {
		t.Fatalf("CreateMapping tertiary: %v", err)
	}
	if m.MappingType != models.MappingTertiary || m.Weight != models.MappingTertiary.DefaultWeight() {
		t.Fatalf("expected tertiary with weight %d, got %s/%d", models.MappingTertiary.DefaultWeight(), m.MappingType, m.Weight)
	}
	if repo.createdMapping == nil || repo.createdMapping.MappingType != models.MappingTertiary {
		t.Fatalf("tertiary mapping not forwarded to the insert, got %+v", repo.createdMapping)
	}
}

func TestCreateMappingValidatesBounds(t *testing.T) {
	service := NewStyleAdminService(&stubStyleRepo{})

	over := 101
	if _, err := service.CreateMapping(context.Background(), 1, 2, models.MappingPrimary, &over); !errors.Is(err, ErrValidation) {
		t.Fatalf("weight 101: expected ErrValidation, got %v", err)
	}
	under := -1
	if _, err := service.CreateMapping(context.Background(), 1, 2, models.MappingPrimary, &under); !errors.Is(err, ErrValidation) {
		t.Fatalf("weight -1: expected ErrValidation, got %v", err)
	}
	if _, err := service.CreateMapping(context.Background(), 1, 2, models.MappingType("bogus"), nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("bogus mapping type: expected ErrValidation, got %v", err)
	}
	if _, err := service.UpdateMappingWeight(context.Background(), 7, 150); !errors.Is(err, ErrValidation) {
		t.Fatalf("update weight 150: expected ErrValidation, got %v", err)
	}
}

func TestCatalogReportIncludesUnmappedWarning(t *testing.T) {
	service := NewStyleAdminService(&stubStyleRepo{})

	report, err := service.CatalogReport(context.Background())
	if err != nil {
		t.Fatalf("CatalogReport: %v", err)
	}
	if len(report.UnmappedTrainerStyles) != 1 || report.UnmappedTrainerStyles[0] != 3 {
		t.Fatalf("expected trainer style 3 flagged unmapped, got %v", report.UnmappedTrainerStyles)
	}
	if len(report.ClientStyles) != 1 || len(report.TrainerStyles) != 2 {
		t.Fatalf("expected full catalog in report, got %d/%d", len(report.ClientStyles), len(report.TrainerStyles))
	}
}
