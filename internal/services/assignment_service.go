package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

// AssignmentConflictError reports that the client already holds an active
// template. It matches ErrConflict under errors.Is and carries the blocking
// assignment so the caller can show it.
type AssignmentConflictError struct {
	Existing *models.TemplateAssignment
}

func (e *AssignmentConflictError) Error() string {
	return fmt.Sprintf("client %d already has active template %q", e.Existing.ClientID, e.Existing.TemplateName)
}

func (e *AssignmentConflictError) Is(target error) bool {
	return target == ErrConflict
}

type assignmentEngagementReader interface {
	GetByPair(ctx context.Context, clientID, trainerID int64) (*models.Engagement, error)
}

type AssignmentService struct {
	db             *pgxpool.Pool
	assignmentRepo *repository.AssignmentRepository
	engagementRepo assignmentEngagementReader
	notifier       Notifier
}

func NewAssignmentService(
	db *pgxpool.Pool,
	assignmentRepo *repository.AssignmentRepository,
	engagementRepo assignmentEngagementReader,
	notifier Notifier,
) *AssignmentService {
	return &AssignmentService{
		db:             db,
		assignmentRepo: assignmentRepo,
		engagementRepo: engagementRepo,
		notifier:       notifier,
	}
}

type AssignTemplateInput struct {
	ClientID       int64
	TemplateName   string
	TemplateBaseID int64
	Replace        bool
	// ReplaceReason is the operator's stated reason for superseding the
	// active assignment; required whenever Replace is set.
	ReplaceReason string
}

// Assign runs the register's check, expire, create sequence. Without Replace
// an existing active assignment is a conflict; with Replace it is expired
// with the operator's reason and the new one created in the same
// transaction. The whole attempt shares one correlation id.
func (s *AssignmentService) Assign(
	ctx context.Context,
	trainerID int64,
	input AssignTemplateInput,
) (*models.TemplateAssignment, error) {
	if trainerID <= 0 || input.ClientID <= 0 || input.ClientID == trainerID {
		return nil, ErrValidation
	}
	if strings.TrimSpace(input.TemplateName) == "" || input.TemplateBaseID <= 0 {
		return nil, ErrValidation
	}
	if input.Replace && strings.TrimSpace(input.ReplaceReason) == "" {
		return nil, ErrValidation
	}

	engagement, err := s.engagementRepo.GetByPair(ctx, input.ClientID, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if engagement.Stage != models.StageActiveClient {
		return nil, ErrForbidden
	}

	correlationID := uuid.NewString()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAssignmentRepo := repository.NewAssignmentRepository(tx)

	existing, err := txAssignmentRepo.FindActiveByClient(ctx, input.ClientID)
	switch {
	case err == nil:
		if !input.Replace {
			return nil, &AssignmentConflictError{Existing: existing}
		}
		if _, err := txAssignmentRepo.Expire(ctx, existing.ID, strings.TrimSpace(input.ReplaceReason)); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrConflict
			}
			return nil, err
		}
	case errors.Is(err, pgx.ErrNoRows):
		// no active assignment, proceed straight to create
	default:
		return nil, err
	}

	created, err := txAssignmentRepo.Create(ctx, repository.CreateAssignmentInput{
		ClientID:       input.ClientID,
		TrainerID:      trainerID,
		TemplateName:   strings.TrimSpace(input.TemplateName),
		TemplateBaseID: input.TemplateBaseID,
		CorrelationID:  correlationID,
	})
	if err != nil {
		// The guarded insert found an active row that appeared after our
		// check; surface it as the conflict it is.
		if errors.Is(err, pgx.ErrNoRows) {
			if racer, rerr := s.assignmentRepo.FindActiveByClient(ctx, input.ClientID); rerr == nil {
				return nil, &AssignmentConflictError{Existing: racer}
			}
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(input.ClientID, "template_assigned", map[string]any{
			"assignment_id":  created.ID,
			"template_name":  created.TemplateName,
			"correlation_id": created.CorrelationID,
		})
	}

	return created, nil
}

// ExpireActive retires the client's active assignment without creating a
// replacement.
func (s *AssignmentService) ExpireActive(
	ctx context.Context,
	trainerID int64,
	clientID int64,
	reason string,
) (*models.TemplateAssignment, error) {
	if trainerID <= 0 || clientID <= 0 {
		return nil, ErrValidation
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrValidation
	}

	existing, err := s.assignmentRepo.FindActiveByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrForbidden
	}

	expired, err := s.assignmentRepo.Expire(ctx, existing.ID, strings.TrimSpace(reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return expired, nil
}

// History returns every assignment the client has held, newest first; the
// audit trail keeps expired rows forever.
func (s *AssignmentService) History(
	ctx context.Context,
	actorID int64,
	role string,
	clientID int64,
) ([]models.TemplateAssignment, error) {
	if clientID <= 0 {
		return nil, ErrValidation
	}
	if role == models.RoleClient && actorID != clientID {
		return nil, ErrForbidden
	}
	return s.assignmentRepo.ListByClient(ctx, clientID)
}

func (s *AssignmentService) ActiveForClient(
	ctx context.Context,
	clientID int64,
) (*models.TemplateAssignment, error) {
	assignment, err := s.assignmentRepo.FindActiveByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}
