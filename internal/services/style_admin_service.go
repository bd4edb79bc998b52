package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type styleCatalogRepo interface {
	KeyExists(ctx context.Context, catalog string, styleKey string) (bool, error)
	CreateClientStyle(ctx context.Context, input repository.CreateStyleInput) (*models.ClientCoachingStyle, error)
	CreateTrainerStyle(ctx context.Context, input repository.CreateStyleInput) (*models.TrainerCoachingStyle, error)
	Deactivate(ctx context.Context, catalog string, styleID int64) error
	ListClientStyles(ctx context.Context, activeOnly bool) ([]models.ClientCoachingStyle, error)
	ListTrainerStyles(ctx context.Context, activeOnly bool) ([]models.TrainerCoachingStyle, error)
	CreateMapping(ctx context.Context, clientStyleID, trainerStyleID int64, mappingType models.MappingType, weight int) (*models.CoachingStyleMapping, error)
	UpdateMappingWeight(ctx context.Context, mappingID int64, weight int) (*models.CoachingStyleMapping, error)
	DeleteMapping(ctx context.Context, mappingID int64) error
	ListMappings(ctx context.Context) ([]models.CoachingStyleMapping, error)
	ListUnmappedTrainerStyleIDs(ctx context.Context) ([]int64, error)
}

type StyleAdminService struct {
	styleRepo styleCatalogRepo
}

func NewStyleAdminService(styleRepo styleCatalogRepo) *StyleAdminService {
	return &StyleAdminService{styleRepo: styleRepo}
}

type CreateStyleInput struct {
	Catalog      string
	StyleKey     string
	Label        string
	Description  *string
	Emoji        *string
	DisplayOrder int
}

var styleKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateStyleInput(input CreateStyleInput) error {
	key := strings.TrimSpace(input.StyleKey)
	if key == "" {
		return fmt.Errorf("%w: style_key is required", ErrValidation)
	}
	if !styleKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: style_key must be snake_case", ErrValidation)
	}
	if strings.TrimSpace(input.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrValidation)
	}
	if input.Catalog != "client" && input.Catalog != "trainer" {
		return fmt.Errorf("%w: catalog must be client or trainer", ErrValidation)
	}
	return nil
}

func (s *StyleAdminService) CreateClientStyle(
	ctx context.Context,
	input CreateStyleInput,
) (*models.ClientCoachingStyle, error) {
	input.Catalog = "client"
	create, err := s.prepareStyleCreate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.styleRepo.CreateClientStyle(ctx, *create)
}

func (s *StyleAdminService) CreateTrainerStyle(
	ctx context.Context,
	input CreateStyleInput,
) (*models.TrainerCoachingStyle, error) {
	input.Catalog = "trainer"
	create, err := s.prepareStyleCreate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.styleRepo.CreateTrainerStyle(ctx, *create)
}

func (s *StyleAdminService) prepareStyleCreate(
	ctx context.Context,
	input CreateStyleInput,
) (*repository.CreateStyleInput, error) {
	if err := validateStyleInput(input); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.StyleKey)
	exists, err := s.styleRepo.KeyExists(ctx, input.Catalog, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: style_key %q already exists in %s catalog", ErrConflict, key, input.Catalog)
	}

	return &repository.CreateStyleInput{
		StyleKey:     key,
		Label:        strings.TrimSpace(input.Label),
		Description:  input.Description,
		Emoji:        input.Emoji,
		DisplayOrder: input.DisplayOrder,
	}, nil
}

// DeactivateStyle soft-deletes a style: it disappears from pickers while its
// mappings and historical matches stay intact for audit.
func (s *StyleAdminService) DeactivateStyle(ctx context.Context, catalog string, styleID int64) error {
	if catalog != "client" && catalog != "trainer" {
		return fmt.Errorf("%w: catalog must be client or trainer", ErrValidation)
	}
	return s.styleRepo.Deactivate(ctx, catalog, styleID)
}

func (s *StyleAdminService) CreateMapping(
	ctx context.Context,
	clientStyleID int64,
	trainerStyleID int64,
	mappingType models.MappingType,
	weight *int,
) (*models.CoachingStyleMapping, error) {
	if clientStyleID <= 0 || trainerStyleID <= 0 {
		return nil, fmt.Errorf("%w: both style ids are required", ErrValidation)
	}
	switch mappingType {
	case models.MappingPrimary, models.MappingSecondary, models.MappingTertiary:
	default:
		return nil, fmt.Errorf("%w: mapping_type must be primary, secondary or tertiary", ErrValidation)
	}

	// The type sets a default weight, not a constraint.
	effective := mappingType.DefaultWeight()
	if weight != nil {
		effective = *weight
	}
	if effective < 0 || effective > 100 {
		return nil, fmt.Errorf("%w: weight must be between 0 and 100", ErrValidation)
	}

	return s.styleRepo.CreateMapping(ctx, clientStyleID, trainerStyleID, mappingType, effective)
}

func (s *StyleAdminService) UpdateMappingWeight(
	ctx context.Context,
	mappingID int64,
	weight int,
) (*models.CoachingStyleMapping, error) {
	if weight < 0 || weight > 100 {
		return nil, fmt.Errorf("%w: weight must be between 0 and 100", ErrValidation)
	}
	return s.styleRepo.UpdateMappingWeight(ctx, mappingID, weight)
}

func (s *StyleAdminService) DeleteMapping(ctx context.Context, mappingID int64) error {
	return s.styleRepo.DeleteMapping(ctx, mappingID)
}

type StyleCatalogReport struct {
	ClientStyles          []models.ClientCoachingStyle  `json:"client_styles"`
	TrainerStyles         []models.TrainerCoachingStyle `json:"trainer_styles"`
	Mappings              []models.CoachingStyleMapping `json:"mappings"`
	UnmappedTrainerStyles []int64                       `json:"unmapped_trainer_style_ids"`
}

// CatalogReport returns the full model plus the unmapped-trainer-style
// warning list operators use to spot matching gaps.
func (s *StyleAdminService) CatalogReport(ctx context.Context) (*StyleCatalogReport, error) {
	clientStyles, err := s.styleRepo.ListClientStyles(ctx, false)
	if err != nil {
		return nil, err
	}
	trainerStyles, err := s.styleRepo.ListTrainerStyles(ctx, false)
	if err != nil {
		return nil, err
	}
	mappings, err := s.styleRepo.ListMappings(ctx)
	if err != nil {
		return nil, err
	}
	unmapped, err := s.styleRepo.ListUnmappedTrainerStyleIDs(ctx)
	if err != nil {
		return nil, err
	}

	return &StyleCatalogReport{
		ClientStyles:          clientStyles,
		TrainerStyles:         trainerStyles,
		Mappings:              mappings,
		UnmappedTrainerStyles: unmapped,
	}, nil
}
