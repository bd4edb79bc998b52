package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type stubEngagementStore struct {
	engagement *models.Engagement

	// raceStage, when set, makes the optimistic write fail and the re-read
	// return this stage instead.
	raceStage models.Stage

	updateCalls int
}

func (s *stubEngagementStore) GetOrCreate(_ context.Context, clientID, trainerID int64) (*models.Engagement, error) {
	if s.engagement == nil {
		s.engagement = &models.Engagement{ID: 1, ClientID: clientID, TrainerID: trainerID, Stage: models.StageBrowsing}
	}
	return s.engagement, nil
}

func (s *stubEngagementStore) GetByPair(_ context.Context, clientID, trainerID int64) (*models.Engagement, error) {
	if s.engagement == nil {
		return nil, pgx.ErrNoRows
	}
	fresh := *s.engagement
	if s.raceStage != "" {
		fresh.Stage = s.raceStage
	}
	return &fresh, nil
}

func (s *stubEngagementStore) UpdateStageIfCurrent(_ context.Context, engagementID int64, currentStage, nextStage models.Stage) (*models.Engagement, error) {
	s.updateCalls++
	if s.raceStage != "" {
		return nil, pgx.ErrNoRows
	}
	s.engagement.Stage = nextStage
	return s.engagement, nil
}

func (s *stubEngagementStore) UpdateNotes(_ context.Context, engagementID int64, notes *string) (*models.Engagement, error) {
	s.engagement.Notes = notes
	return s.engagement, nil
}

func (s *stubEngagementStore) ListForClient(_ context.Context, clientID int64) ([]models.Engagement, error) {
	return []models.Engagement{{ClientID: clientID}}, nil
}

func (s *stubEngagementStore) ListForTrainer(_ context.Context, trainerID int64) ([]models.Engagement, error) {
	return []models.Engagement{{TrainerID: trainerID}}, nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(_ int64, event string, _ map[string]any) {
	n.events = append(n.events, event)
}

func TestApplyEventAdvancesStageAndNotifiesBothParties(t *testing.T) {
	store := &stubEngagementStore{}
	notifier := &recordingNotifier{}
	service := NewEngagementService(store, notifier)

	engagement, err := service.ApplyEvent(context.Background(), 5, 9, EventLike)
	if err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}
	if engagement.Stage != models.StageLiked {
		t.Fatalf("expected liked, got %s", engagement.Stage)
	}
	if len(notifier.events) != 2 {
		t.Fatalf("expected a notification to each party, got %d", len(notifier.events))
	}
}

func TestApplyEventNoOpSkipsWrite(t *testing.T) {
	store := &stubEngagementStore{
		engagement: &models.Engagement{ID: 1, ClientID: 5, TrainerID: 9, Stage: models.StageActiveClient},
	}
	service := NewEngagementService(store, nil)

	engagement, err := service.ApplyEvent(context.Background(), 5, 9, EventFirstMessageSent)
	if err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}
	if engagement.Stage != models.StageActiveClient {
		t.Fatalf("expected stage unchanged, got %s", engagement.Stage)
	}
	if store.updateCalls != 0 {
		t.Fatalf("no-op event must not write, got %d writes", store.updateCalls)
	}
}

func TestApplyEventLostRaceSameStageIsNoOp(t *testing.T) {
	store := &stubEngagementStore{
		engagement: &models.Engagement{ID: 1, ClientID: 5, TrainerID: 9, Stage: models.StageBrowsing},
		raceStage:  models.StageLiked,
	}
	service := NewEngagementService(store, nil)

	engagement, err := service.ApplyEvent(context.Background(), 5, 9, EventLike)
	if err != nil {
		t.Fatalf("ApplyEvent after benign race: %v", err)
	}
	if engagement.Stage != models.StageLiked {
		t.Fatalf("expected the racer's stage, got %s", engagement.Stage)
	}
}

func TestApplyEventLostRaceDifferentStageRejected(t *testing.T) {
	store := &stubEngagementStore{
		engagement: &models.Engagement{ID: 1, ClientID: 5, TrainerID: 9, Stage: models.StageBrowsing},
		raceStage:  models.StageDeclined,
	}
	service := NewEngagementService(store, nil)

	if _, err := service.ApplyEvent(context.Background(), 5, 9, EventLike); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after losing to decline, got %v", err)
	}
}

func TestApplyEventValidatesPair(t *testing.T) {
	service := NewEngagementService(&stubEngagementStore{}, nil)

	cases := []struct{ clientID, trainerID int64 }{
		{0, 9}, {5, 0}, {7, 7},
	}
	for _, tc := range cases {
		if _, err := service.ApplyEvent(context.Background(), tc.clientID, tc.trainerID, EventLike); !errors.Is(err, ErrValidation) {
			t.Fatalf("pair (%d, %d): expected ErrValidation, got %v", tc.clientID, tc.trainerID, err)
		}
	}
}

func TestStageForViewerDefaultsToBrowsing(t *testing.T) {
	store := &stubEngagementStore{
		engagement: &models.Engagement{ID: 1, ClientID: 5, TrainerID: 9, Stage: models.StageMatched},
	}
	service := NewEngagementService(store, nil)

	// A trainer viewing another trainer browses like a stranger.
	stage, err := service.StageForViewer(context.Background(), 8, models.RoleTrainer, 9)
	if err != nil || stage != models.StageBrowsing {
		t.Fatalf("trainer viewer: got (%s, %v)", stage, err)
	}

	// A guest id never resolves a persisted stage.
	stage, err = service.StageForViewer(context.Background(), 0, models.RoleClient, 9)
	if err != nil || stage != models.StageBrowsing {
		t.Fatalf("guest viewer: got (%s, %v)", stage, err)
	}

	stage, err = service.StageForViewer(context.Background(), 5, models.RoleClient, 9)
	if err != nil || stage != models.StageMatched {
		t.Fatalf("client viewer: got (%s, %v)", stage, err)
	}
}

func TestListRequiresKnownRole(t *testing.T) {
	service := NewEngagementService(&stubEngagementStore{}, nil)
	if _, err := service.List(context.Background(), 5, models.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin list, got %v", err)
	}
}
