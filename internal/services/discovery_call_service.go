package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

type discoveryEngagementReader interface {
	GetOrCreate(ctx context.Context, clientID, trainerID int64) (*models.Engagement, error)
}

type DiscoveryCallService struct {
	db             *pgxpool.Pool
	callRepo       *repository.DiscoveryCallRepository
	engagementRepo discoveryEngagementReader
	engagements    engagementEvents
	userRepo       userReader
	notifier       Notifier
}

func NewDiscoveryCallService(
	db *pgxpool.Pool,
	callRepo *repository.DiscoveryCallRepository,
	engagementRepo discoveryEngagementReader,
	engagements engagementEvents,
	userRepo userReader,
	notifier Notifier,
) *DiscoveryCallService {
	return &DiscoveryCallService{
		db:             db,
		callRepo:       callRepo,
		engagementRepo: engagementRepo,
		engagements:    engagements,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

type BookDiscoveryCallInput struct {
	TrainerID       int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

// BookCall reserves a discovery-call slot with the trainer. The slot check
// and insert run under a per-trainer advisory lock so two clients cannot
// book the same window.
func (s *DiscoveryCallService) BookCall(
	ctx context.Context,
	clientID int64,
	input BookDiscoveryCallInput,
) (*models.DiscoveryCall, error) {
	if input.TrainerID <= 0 || input.DurationMinutes <= 0 {
		return nil, ErrValidation
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrValidation
	}
	if clientID == input.TrainerID {
		return nil, ErrValidation
	}

	trainer, err := s.userRepo.GetByID(ctx, input.TrainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if trainer.Role != models.RoleTrainer {
		return nil, ErrValidation
	}

	// Booking is only open once the pair has matched; check the stage
	// machine before touching the calendar.
	engagement, err := s.engagementRepo.GetOrCreate(ctx, clientID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(engagement.Stage, EventDiscoveryCallBooked); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txCallRepo := repository.NewDiscoveryCallRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TrainerID); err != nil {
		return nil, err
	}

	hasConflict, err := txCallRepo.HasConflict(
		ctx,
		input.TrainerID,
		input.ScheduledAt.UTC(),
		input.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	call, err := txCallRepo.Create(ctx, repository.CreateDiscoveryCallInput{
		ClientID:        clientID,
		TrainerID:       input.TrainerID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.engagements != nil {
		_, _ = s.engagements.ApplyEvent(ctx, clientID, input.TrainerID, EventDiscoveryCallBooked)
	}
	if s.notifier != nil {
		s.notifier.Notify(input.TrainerID, "discovery_call_booked", map[string]any{
			"call_id":      call.ID,
			"scheduled_at": call.ScheduledAt,
		})
	}

	return call, nil
}

func (s *DiscoveryCallService) CheckAvailability(
	ctx context.Context,
	trainerID int64,
	requestedTime time.Time,
	durationMins int,
) (bool, error) {
	hasConflict, err := s.callRepo.HasConflict(ctx, trainerID, requestedTime.UTC(), durationMins)
	if err != nil {
		return false, err
	}
	return !hasConflict, nil
}

// UpdateStatus moves a call through booked, in_progress, completed or to
// cancelled, and feeds the relationship the matching stage event.
func (s *DiscoveryCallService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	callID int64,
	requestedStatus string,
) (*models.DiscoveryCall, error) {
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessCall(role, actorID, call) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeCallStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateCallTransition(role, call, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.callRepo.UpdateStatusIfCurrent(ctx, callID, call.Status, nextStatus)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	if s.engagements != nil {
		switch nextStatus {
		case "in_progress":
			_, _ = s.engagements.ApplyEvent(ctx, updated.ClientID, updated.TrainerID, EventDiscoveryCallStarted)
		case "completed":
			_, _ = s.engagements.ApplyEvent(ctx, updated.ClientID, updated.TrainerID, EventDiscoveryCallCompleted)
		}
	}

	return updated, nil
}

func (s *DiscoveryCallService) ListForPair(
	ctx context.Context,
	actorID int64,
	role string,
	clientID int64,
	trainerID int64,
) ([]models.DiscoveryCall, error) {
	if clientID <= 0 || trainerID <= 0 {
		return nil, ErrValidation
	}
	switch role {
	case models.RoleClient:
		if actorID != clientID {
			return nil, ErrForbidden
		}
	case models.RoleTrainer:
		if actorID != trainerID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	return s.callRepo.ListForPair(ctx, clientID, trainerID)
}

func canAccessCall(role string, actorID int64, call *models.DiscoveryCall) bool {
	if role == models.RoleClient {
		return call.ClientID == actorID
	}
	if role == models.RoleTrainer {
		return call.TrainerID == actorID
	}
	return false
}

func normalizeCallStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "start", "in_progress":
		return "in_progress", nil
	case "complete", "completed":
		return "completed", nil
	case "cancel", "cancelled", "canceled":
		return "cancelled", nil
	default:
		return "", ErrValidation
	}
}

func validateCallTransition(role string, call *models.DiscoveryCall, nextStatus string) error {
	switch nextStatus {
	case "in_progress":
		if role != models.RoleTrainer {
			return ErrForbidden
		}
		if call.Status != "booked" {
			return ErrInvalidTransition
		}
	case "completed":
		if role != models.RoleTrainer {
			return ErrForbidden
		}
		if call.Status != "in_progress" {
			return ErrInvalidTransition
		}
	case "cancelled":
		if call.Status == "completed" || call.Status == "cancelled" {
			return ErrInvalidTransition
		}
	default:
		return ErrValidation
	}
	return nil
}
