package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
)

// SelectionEvent is an input to the coach-selection request state machine.
type SelectionEvent string

const (
	SelectionTrainerAccept           SelectionEvent = "trainer_accept"
	SelectionTrainerDecline          SelectionEvent = "trainer_decline"
	SelectionSuggestAlternative      SelectionEvent = "suggest_alternative"
	SelectionClientAcceptAlternative SelectionEvent = "client_accept_alternative"
	SelectionInitiatePayment         SelectionEvent = "initiate_payment"
	SelectionPaymentCompleted        SelectionEvent = "payment_completed"
)

type selectionEdge struct {
	from  models.RequestStatus
	event SelectionEvent
	to    models.RequestStatus
}

var selectionTransitions = []selectionEdge{
	{models.RequestPending, SelectionTrainerAccept, models.RequestAccepted},

	{models.RequestPending, SelectionTrainerDecline, models.RequestDeclined},
	{models.RequestAccepted, SelectionTrainerDecline, models.RequestDeclined},

	{models.RequestPending, SelectionSuggestAlternative, models.RequestAlternativeSuggested},
	{models.RequestAccepted, SelectionSuggestAlternative, models.RequestAlternativeSuggested},

	{models.RequestAlternativeSuggested, SelectionClientAcceptAlternative, models.RequestAccepted},

	{models.RequestAccepted, SelectionInitiatePayment, models.RequestAwaitingPayment},

	{models.RequestAccepted, SelectionPaymentCompleted, models.RequestCompleted},
	{models.RequestAwaitingPayment, SelectionPaymentCompleted, models.RequestCompleted},
}

// NextRequestStatus computes the next status for an event; the single code
// path allowed to decide request-status changes.
func NextRequestStatus(current models.RequestStatus, event SelectionEvent) (models.RequestStatus, error) {
	for _, edge := range selectionTransitions {
		if edge.from == current && edge.event == event {
			return edge.to, nil
		}
	}
	return current, ErrInvalidTransition
}

// CheckoutProvider creates a hosted payment page for a request. Payment
// capture itself happens outside this service; completion comes back through
// the webhook as RecordPaymentCompleted.
type CheckoutProvider interface {
	CreateCheckoutSession(requestID int64, clientID int64, packageName string, amount float64) (sessionID string, url string, err error)
}

type engagementEvents interface {
	ApplyEvent(ctx context.Context, clientID, trainerID int64, event StageEvent) (*models.Engagement, error)
}

type SelectionService struct {
	db             *pgxpool.Pool
	selectionRepo  *repository.SelectionRepository
	paymentRepo    *repository.PaymentRepository
	engagements    engagementEvents
	checkout       CheckoutProvider
	notifier       Notifier
}

func NewSelectionService(
	db *pgxpool.Pool,
	selectionRepo *repository.SelectionRepository,
	paymentRepo *repository.PaymentRepository,
	engagements engagementEvents,
	checkout CheckoutProvider,
	notifier Notifier,
) *SelectionService {
	return &SelectionService{
		db:            db,
		selectionRepo: selectionRepo,
		paymentRepo:   paymentRepo,
		engagements:   engagements,
		checkout:      checkout,
		notifier:      notifier,
	}
}

type CreateSelectionInput struct {
	TrainerID       int64
	PackageID       int64
	PackageName     string
	PackagePrice    float64
	PackageDuration int
	ClientMessage   *string
}

// CreateRequest opens a new negotiation attempt. A client may not stack
// concurrent live requests against the same trainer.
func (s *SelectionService) CreateRequest(
	ctx context.Context,
	clientID int64,
	input CreateSelectionInput,
) (*models.SelectionRequest, error) {
	if clientID <= 0 || input.TrainerID <= 0 || clientID == input.TrainerID {
		return nil, ErrValidation
	}
	if input.PackageID <= 0 || strings.TrimSpace(input.PackageName) == "" {
		return nil, ErrValidation
	}
	if input.PackagePrice <= 0 || input.PackageDuration <= 0 {
		return nil, ErrValidation
	}

	hasLive, err := s.selectionRepo.HasLiveRequest(ctx, clientID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if hasLive {
		return nil, ErrConflict
	}

	request, err := s.selectionRepo.Create(ctx, repository.CreateSelectionRequestInput{
		ClientID:        clientID,
		TrainerID:       input.TrainerID,
		PackageID:       input.PackageID,
		PackageName:     strings.TrimSpace(input.PackageName),
		PackagePrice:    input.PackagePrice,
		PackageDuration: input.PackageDuration,
		ClientMessage:   input.ClientMessage,
	})
	if err != nil {
		// A live request that slipped in between the check and the insert
		// trips the partial unique index; same conflict, later detection.
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.notify(request.TrainerID, "selection_request_created", request)
	return request, nil
}

func (s *SelectionService) GetRequest(
	ctx context.Context,
	actorID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != actorID && request.TrainerID != actorID {
		return nil, ErrForbidden
	}
	return request, nil
}

func (s *SelectionService) TrainerAccept(
	ctx context.Context,
	trainerID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadTrainerRequest(ctx, trainerID, requestID)
	if err != nil {
		return nil, err
	}

	next, err := NextRequestStatus(request.Status, SelectionTrainerAccept)
	if err != nil {
		return nil, err
	}

	updated, err := s.selectionRepo.UpdateStatusIfCurrent(ctx, requestID, request.Status, next)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	// Acceptance also advances the relationship toward agreed; the
	// engagement write is advisory and must not fail the acceptance.
	if s.engagements != nil {
		_, _ = s.engagements.ApplyEvent(ctx, updated.ClientID, updated.TrainerID, EventSelectionAccepted)
	}

	s.notify(updated.ClientID, "selection_request_accepted", updated)
	return updated, nil
}

func (s *SelectionService) TrainerDecline(
	ctx context.Context,
	trainerID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadTrainerRequest(ctx, trainerID, requestID)
	if err != nil {
		return nil, err
	}

	next, err := NextRequestStatus(request.Status, SelectionTrainerDecline)
	if err != nil {
		return nil, err
	}

	updated, err := s.selectionRepo.UpdateStatusIfCurrent(ctx, requestID, request.Status, next)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	s.notify(updated.ClientID, "selection_request_declined", updated)
	return updated, nil
}

type AlternativePackageInput struct {
	PackageID       int64
	PackageName     string
	PackagePrice    float64
	PackageDuration int
	TrainerResponse string
}

func (s *SelectionService) TrainerSuggestAlternative(
	ctx context.Context,
	trainerID int64,
	requestID int64,
	input AlternativePackageInput,
) (*models.SelectionRequest, error) {
	if input.PackageID <= 0 || strings.TrimSpace(input.PackageName) == "" {
		return nil, ErrValidation
	}
	if input.PackagePrice <= 0 || input.PackageDuration <= 0 {
		return nil, ErrValidation
	}

	request, err := s.loadTrainerRequest(ctx, trainerID, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := NextRequestStatus(request.Status, SelectionSuggestAlternative); err != nil {
		return nil, err
	}

	updated, err := s.selectionRepo.SetAlternative(ctx, requestID, request.Status, repository.SuggestAlternativeInput{
		PackageID:       input.PackageID,
		PackageName:     strings.TrimSpace(input.PackageName),
		PackagePrice:    input.PackagePrice,
		PackageDuration: input.PackageDuration,
		TrainerResponse: strings.TrimSpace(input.TrainerResponse),
	})
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	s.notify(updated.ClientID, "selection_alternative_suggested", updated)
	return updated, nil
}

// ClientAcceptAlternative adopts the suggested package as the request's one
// current package; the original package fields are overwritten, not kept.
func (s *SelectionService) ClientAcceptAlternative(
	ctx context.Context,
	clientID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadClientRequest(ctx, clientID, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := NextRequestStatus(request.Status, SelectionClientAcceptAlternative); err != nil {
		return nil, err
	}

	updated, err := s.selectionRepo.PromoteAlternative(ctx, requestID)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	if s.engagements != nil {
		_, _ = s.engagements.ApplyEvent(ctx, updated.ClientID, updated.TrainerID, EventSelectionAccepted)
	}

	s.notify(updated.TrainerID, "selection_alternative_accepted", updated)
	return updated, nil
}

// InitiatePayment moves an accepted request to awaiting_payment and creates
// the payment record plus, when a checkout provider is configured, a hosted
// checkout session the client is redirected to.
func (s *SelectionService) InitiatePayment(
	ctx context.Context,
	clientID int64,
	requestID int64,
) (*models.SelectionDetail, error) {
	request, err := s.loadClientRequest(ctx, clientID, requestID)
	if err != nil {
		return nil, err
	}

	next, err := NextRequestStatus(request.Status, SelectionInitiatePayment)
	if err != nil {
		return nil, err
	}

	var checkoutSessionID, checkoutURL string
	if s.checkout != nil {
		checkoutSessionID, checkoutURL, err = s.checkout.CreateCheckoutSession(
			request.ID,
			request.ClientID,
			request.PackageName,
			request.PackagePrice,
		)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSelectionRepo := repository.NewSelectionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	updated, err := txSelectionRepo.UpdateStatusIfCurrent(ctx, requestID, request.Status, next)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	var sessionRef *string
	if checkoutSessionID != "" {
		sessionRef = &checkoutSessionID
	}
	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		RequestID:       updated.ID,
		ClientID:        updated.ClientID,
		TrainerID:       updated.TrainerID,
		Amount:          updated.PackagePrice,
		Status:          "pending",
		CheckoutSession: sessionRef,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.engagements != nil {
		_, _ = s.engagements.ApplyEvent(ctx, updated.ClientID, updated.TrainerID, EventSelectionAccepted)
	}

	return &models.SelectionDetail{
		SelectionRequest: *updated,
		Payment:          payment,
		CheckoutURL:      checkoutURL,
	}, nil
}

// RecordPaymentCompleted finishes the request and promotes the engagement to
// active_client in one transaction: either both advance or neither does.
func (s *SelectionService) RecordPaymentCompleted(
	ctx context.Context,
	requestID int64,
) (*models.SelectionRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSelectionRepo := repository.NewSelectionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)
	txEngagementRepo := repository.NewEngagementRepository(tx)

	request, err := txSelectionRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// A webhook may be delivered more than once.
	if request.Status == models.RequestCompleted {
		return request, nil
	}

	next, err := NextRequestStatus(request.Status, SelectionPaymentCompleted)
	if err != nil {
		return nil, err
	}

	updated, err := txSelectionRepo.UpdateStatusIfCurrent(ctx, requestID, request.Status, next)
	if err != nil {
		return nil, mapStatusWriteError(err)
	}

	if payment, err := txPaymentRepo.GetByRequestID(ctx, requestID); err == nil {
		if _, err := txPaymentRepo.UpdateStatusIfCurrent(ctx, payment.ID, "pending", "paid"); err != nil &&
			!errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	engagement, err := txEngagementRepo.GetOrCreate(ctx, updated.ClientID, updated.TrainerID)
	if err != nil {
		return nil, err
	}
	nextStage, err := paymentCompletionStage(engagement.Stage)
	if err != nil {
		return nil, err
	}
	if nextStage != engagement.Stage {
		if _, err := txEngagementRepo.UpdateStageIfCurrent(ctx, engagement.ID, engagement.Stage, nextStage); err != nil {
			return nil, mapStatusWriteError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notify(updated.ClientID, "selection_payment_completed", updated)
	s.notify(updated.TrainerID, "selection_payment_completed", updated)
	return updated, nil
}

func (s *SelectionService) ListForPair(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) ([]models.SelectionRequest, error) {
	return s.selectionRepo.ListForPair(ctx, clientID, trainerID)
}

func (s *SelectionService) ListForTrainer(
	ctx context.Context,
	trainerID int64,
	status models.RequestStatus,
) ([]models.SelectionRequest, error) {
	return s.selectionRepo.ListForTrainer(ctx, trainerID, status)
}

func (s *SelectionService) loadRequest(ctx context.Context, requestID int64) (*models.SelectionRequest, error) {
	if requestID <= 0 {
		return nil, ErrValidation
	}
	request, err := s.selectionRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *SelectionService) loadTrainerRequest(
	ctx context.Context,
	trainerID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	return request, nil
}

func (s *SelectionService) loadClientRequest(
	ctx context.Context,
	clientID int64,
	requestID int64,
) (*models.SelectionRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != clientID {
		return nil, ErrForbidden
	}
	return request, nil
}

func (s *SelectionService) notify(userID int64, event string, request *models.SelectionRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, event, map[string]any{
		"request_id": request.ID,
		"status":     request.Status,
		"package":    request.PackageName,
	})
}

// paymentCompletionStage computes where the engagement lands once payment
// has been captured. The engagement may lag behind the request (a client
// can be accepted and pay while its engagement still sits at browsing), so
// the stage is first caught up through the hops the acceptance flow would
// have taken. Terminal stages still reject the payment.
func paymentCompletionStage(current models.Stage) (models.Stage, error) {
	stage := current
	for stage != models.StageActiveClient {
		if next, err := Transition(stage, EventPaymentCompleted); err == nil {
			stage = next
			continue
		}
		if next, err := Transition(stage, EventSelectionAccepted); err == nil {
			stage = next
			continue
		}
		next, err := Transition(stage, EventLike)
		if err != nil {
			return current, err
		}
		stage = next
	}
	return stage, nil
}

// mapStatusWriteError converts a failed conditional status write into the
// typed rejection callers surface to the user.
func mapStatusWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidTransition
	}
	return err
}
