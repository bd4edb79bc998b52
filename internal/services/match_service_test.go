package services

import (
	"context"
	"testing"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type stubTrainerMatcher struct {
	trainers []models.TrainerProfile
}

func (s *stubTrainerMatcher) ListAll(_ context.Context) ([]models.TrainerProfile, error) {
	return s.trainers, nil
}

type stubMappingLister struct {
	mappings []models.CoachingStyleMapping
}

func (s *stubMappingLister) ListMappings(_ context.Context) ([]models.CoachingStyleMapping, error) {
	return s.mappings, nil
}

func mapping(clientStyle, trainerStyle int64, weight int, mt models.MappingType) models.CoachingStyleMapping {
	return models.CoachingStyleMapping{
		ClientStyleID:  clientStyle,
		TrainerStyleID: trainerStyle,
		Weight:         weight,
		MappingType:    mt,
	}
}

func buildScoredTrainer(userID int64, styleIDs []int64, rating float64) models.TrainerProfile {
	return models.TrainerProfile{
		UserID:           userID,
		CoachingStyleIDs: styleIDs,
		Rating:           &rating,
	}
}

func TestMatchScoreTakesMaximumNotSum(t *testing.T) {
	// Client style 1 maps to trainer styles 10 (primary, 100) and 11
	// (secondary, 60). A trainer declaring both still earns 100, not 160.
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
		mapping(1, 11, 60, models.MappingSecondary),
	}

	score, contributions := MatchScore([]int64{1}, []int64{10, 11}, mappings)
	if score != 100 {
		t.Fatalf("expected max credit 100, got %d", score)
	}
	if len(contributions) != 1 || contributions[0].TrainerStyleID != 10 {
		t.Fatalf("expected the primary edge to win, got %+v", contributions)
	}
}

func TestMatchScoreSecondaryOnlyTrainer(t *testing.T) {
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
		mapping(1, 11, 60, models.MappingSecondary),
	}

	score, _ := MatchScore([]int64{1}, []int64{11}, mappings)
	if score != 60 {
		t.Fatalf("expected secondary weight 60, got %d", score)
	}
}

func TestMatchScoreAveragesAcrossClientStyles(t *testing.T) {
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
		mapping(2, 11, 60, models.MappingSecondary),
	}

	score, contributions := MatchScore([]int64{1, 2}, []int64{10, 11}, mappings)
	if score != 80 {
		t.Fatalf("expected (100+60)/2 = 80, got %d", score)
	}
	if len(contributions) != 2 {
		t.Fatalf("expected one contribution per client style, got %d", len(contributions))
	}
}

func TestMatchScoreZeroDeclaredStyles(t *testing.T) {
	score, contributions := MatchScore(nil, []int64{10}, []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
	})
	if score != 0 {
		t.Fatalf("expected 0 for a client with no declared styles, got %d", score)
	}
	if contributions != nil {
		t.Fatalf("expected nil contributions, got %+v", contributions)
	}
}

func TestMatchScoreUnmappedClientStyle(t *testing.T) {
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
	}

	// Style 2 has no mapping rows at all: flagged, contributes zero.
	score, contributions := MatchScore([]int64{1, 2}, []int64{10}, mappings)
	if score != 50 {
		t.Fatalf("expected (100+0)/2 = 50, got %d", score)
	}
	unmapped := false
	for _, c := range contributions {
		if c.ClientStyleID == 2 && c.Unmapped {
			unmapped = true
		}
	}
	if !unmapped {
		t.Fatalf("expected style 2 flagged as unmapped, got %+v", contributions)
	}
}

func TestMatchScoreNoOverlapScoresZero(t *testing.T) {
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
	}
	score, _ := MatchScore([]int64{1}, []int64{99}, mappings)
	if score != 0 {
		t.Fatalf("expected 0 when the trainer declares no mapped style, got %d", score)
	}
}

func TestGetMatchedTrainersSortsByScoreThenRating(t *testing.T) {
	mappings := []models.CoachingStyleMapping{
		mapping(1, 10, 100, models.MappingPrimary),
		mapping(1, 11, 60, models.MappingSecondary),
	}
	service := NewMatchService(
		&stubTrainerMatcher{trainers: []models.TrainerProfile{
			buildScoredTrainer(21, []int64{11}, 4.9),
			buildScoredTrainer(22, []int64{10}, 4.2),
			buildScoredTrainer(23, []int64{10}, 4.8),
		}},
		&stubMappingLister{mappings: mappings},
	)

	matched, err := service.GetMatchedTrainers(context.Background(), &models.ClientProfile{
		CoachingStyleIDs: []int64{1},
	}, 0)
	if err != nil {
		t.Fatalf("GetMatchedTrainers: %v", err)
	}
	if len(matched) != 3 {
		t.Fatalf("expected 3 trainers, got %d", len(matched))
	}
	if matched[0].UserID != 23 || matched[0].MatchScore != 100 {
		t.Fatalf("expected trainer 23 (100, rating 4.8) first, got %d (%d)", matched[0].UserID, matched[0].MatchScore)
	}
	if matched[1].UserID != 22 {
		t.Fatalf("expected trainer 22 second on rating tiebreak, got %d", matched[1].UserID)
	}
	if matched[2].UserID != 21 || matched[2].MatchScore != 60 {
		t.Fatalf("expected trainer 21 (60) last, got %d (%d)", matched[2].UserID, matched[2].MatchScore)
	}
}

func TestGetMatchedTrainersAppliesLimit(t *testing.T) {
	service := NewMatchService(
		&stubTrainerMatcher{trainers: []models.TrainerProfile{
			buildScoredTrainer(1, []int64{10}, 4.5),
			buildScoredTrainer(2, []int64{10}, 4.0),
		}},
		&stubMappingLister{mappings: []models.CoachingStyleMapping{
			mapping(1, 10, 80, models.MappingPrimary),
		}},
	)

	matched, err := service.GetMatchedTrainers(context.Background(), &models.ClientProfile{
		CoachingStyleIDs: []int64{1},
	}, 1)
	if err != nil {
		t.Fatalf("GetMatchedTrainers: %v", err)
	}
	if len(matched) != 1 || matched[0].UserID != 1 {
		t.Fatalf("expected only trainer 1, got %+v", matched)
	}
}
