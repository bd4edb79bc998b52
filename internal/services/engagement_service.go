package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type engagementStore interface {
	GetOrCreate(ctx context.Context, clientID, trainerID int64) (*models.Engagement, error)
	GetByPair(ctx context.Context, clientID, trainerID int64) (*models.Engagement, error)
	UpdateStageIfCurrent(ctx context.Context, engagementID int64, currentStage, nextStage models.Stage) (*models.Engagement, error)
	UpdateNotes(ctx context.Context, engagementID int64, notes *string) (*models.Engagement, error)
	ListForClient(ctx context.Context, clientID int64) ([]models.Engagement, error)
	ListForTrainer(ctx context.Context, trainerID int64) ([]models.Engagement, error)
}

// Notifier delivers fire-and-forget event notifications. A delivery failure
// never rolls back the state change that triggered it.
type Notifier interface {
	Notify(userID int64, event string, payload map[string]any)
}

type EngagementService struct {
	engagementRepo engagementStore
	notifier       Notifier
}

func NewEngagementService(engagementRepo engagementStore, notifier Notifier) *EngagementService {
	return &EngagementService{engagementRepo: engagementRepo, notifier: notifier}
}

// View returns the engagement for the pair, creating it at browsing on
// first view.
func (s *EngagementService) View(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) (*models.Engagement, error) {
	if clientID <= 0 || trainerID <= 0 || clientID == trainerID {
		return nil, ErrValidation
	}
	return s.engagementRepo.GetOrCreate(ctx, clientID, trainerID)
}

// ApplyEvent runs one stage-machine event against the persisted engagement.
// The write is optimistic: if another caller moved the stage first, the
// event is re-evaluated against the fresh stage and rejected if it is no
// longer legal.
func (s *EngagementService) ApplyEvent(
	ctx context.Context,
	clientID int64,
	trainerID int64,
	event StageEvent,
) (*models.Engagement, error) {
	if clientID <= 0 || trainerID <= 0 || clientID == trainerID {
		return nil, ErrValidation
	}

	engagement, err := s.engagementRepo.GetOrCreate(ctx, clientID, trainerID)
	if err != nil {
		return nil, err
	}

	next, err := Transition(engagement.Stage, event)
	if err != nil {
		return nil, err
	}
	if next == engagement.Stage {
		return engagement, nil
	}

	updated, err := s.engagementRepo.UpdateStageIfCurrent(ctx, engagement.ID, engagement.Stage, next)
	if err == nil {
		s.notifyStageChange(updated, event)
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Lost the race. If the other writer already landed the same stage the
	// event is a no-op; otherwise it is no longer legal.
	fresh, freshErr := s.engagementRepo.GetByPair(ctx, clientID, trainerID)
	if freshErr != nil {
		return nil, freshErr
	}
	if fresh.Stage == next {
		return fresh, nil
	}
	return nil, ErrInvalidTransition
}

func (s *EngagementService) notifyStageChange(engagement *models.Engagement, event StageEvent) {
	if s.notifier == nil {
		return
	}
	payload := map[string]any{
		"engagement_id": engagement.ID,
		"stage":         engagement.Stage,
		"event":         event,
	}
	s.notifier.Notify(engagement.ClientID, "engagement_stage_changed", payload)
	s.notifier.Notify(engagement.TrainerID, "engagement_stage_changed", payload)
}

func (s *EngagementService) UpdateNotes(
	ctx context.Context,
	clientID int64,
	trainerID int64,
	notes *string,
) (*models.Engagement, error) {
	engagement, err := s.engagementRepo.GetByPair(ctx, clientID, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.engagementRepo.UpdateNotes(ctx, engagement.ID, notes)
}

func (s *EngagementService) List(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.Engagement, error) {
	switch role {
	case models.RoleClient:
		return s.engagementRepo.ListForClient(ctx, actorID)
	case models.RoleTrainer:
		return s.engagementRepo.ListForTrainer(ctx, actorID)
	default:
		return nil, ErrForbidden
	}
}

// StageForViewer resolves the stage a viewer holds toward a trainer without
// creating an engagement row. Guests and non-clients see browsing.
func (s *EngagementService) StageForViewer(
	ctx context.Context,
	viewerID int64,
	viewerRole string,
	trainerID int64,
) (models.Stage, error) {
	if viewerRole != models.RoleClient || viewerID <= 0 {
		return models.StageBrowsing, nil
	}
	engagement, err := s.engagementRepo.GetByPair(ctx, viewerID, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StageBrowsing, nil
		}
		return models.StageBrowsing, err
	}
	return engagement.Stage, nil
}
