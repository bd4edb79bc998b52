package services

import (
	"context"
	"math"
	"sort"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type TrainerMatcher interface {
	ListAll(ctx context.Context) ([]models.TrainerProfile, error)
}

type mappingLister interface {
	ListMappings(ctx context.Context) ([]models.CoachingStyleMapping, error)
}

type MatchService struct {
	trainerRepo TrainerMatcher
	styleRepo   mappingLister
}

func NewMatchService(trainerRepo TrainerMatcher, styleRepo mappingLister) *MatchService {
	return &MatchService{trainerRepo: trainerRepo, styleRepo: styleRepo}
}

// GetMatchedTrainers ranks onboarded trainers by coaching-style fit for the
// client, ties broken by rating.
func (s *MatchService) GetMatchedTrainers(
	ctx context.Context,
	clientProfile *models.ClientProfile,
	limit int,
) ([]models.TrainerWithScore, error) {
	trainers, err := s.trainerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := s.styleRepo.ListMappings(ctx)
	if err != nil {
		return nil, err
	}

	var clientStyles []int64
	if clientProfile != nil {
		clientStyles = clientProfile.CoachingStyleIDs
	}

	matched := make([]models.TrainerWithScore, 0, len(trainers))
	for _, trainer := range trainers {
		score, contributions := MatchScore(clientStyles, trainer.CoachingStyleIDs, mappings)
		matched = append(matched, models.TrainerWithScore{
			TrainerProfile: trainer,
			MatchScore:     score,
			Contributions:  contributions,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return floatValue(matched[i].Rating) > floatValue(matched[j].Rating)
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// MatchScore computes the coaching-style fit between one client and one
// trainer. Each declared client style contributes the MAXIMUM weight among
// mappings landing in the trainer's declared set (any matching style earns
// full credit, weights are never summed); the aggregate is the mean across
// declared client styles. A client with zero declared styles scores 0.
func MatchScore(
	clientStyleIDs []int64,
	trainerStyleIDs []int64,
	mappings []models.CoachingStyleMapping,
) (int, []models.StyleContribution) {
	if len(clientStyleIDs) == 0 {
		return 0, nil
	}

	trainerSet := make(map[int64]struct{}, len(trainerStyleIDs))
	for _, id := range trainerStyleIDs {
		trainerSet[id] = struct{}{}
	}

	byClientStyle := make(map[int64][]models.CoachingStyleMapping)
	for _, m := range mappings {
		byClientStyle[m.ClientStyleID] = append(byClientStyle[m.ClientStyleID], m)
	}

	contributions := make([]models.StyleContribution, 0, len(clientStyleIDs))
	total := 0
	for _, styleID := range clientStyleIDs {
		edges := byClientStyle[styleID]
		if len(edges) == 0 {
			// A client style without mappings is a data-quality signal for
			// operators, not a runtime error.
			contributions = append(contributions, models.StyleContribution{
				ClientStyleID: styleID,
				Unmapped:      true,
			})
			continue
		}

		best := models.StyleContribution{ClientStyleID: styleID}
		for _, edge := range edges {
			if _, ok := trainerSet[edge.TrainerStyleID]; !ok {
				continue
			}
			if edge.Weight > best.Weight {
				best.Weight = edge.Weight
				best.TrainerStyleID = edge.TrainerStyleID
			}
		}
		total += best.Weight
		contributions = append(contributions, best)
	}

	score := int(math.Round(float64(total) / float64(len(clientStyleIDs))))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, contributions
}

func floatValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
