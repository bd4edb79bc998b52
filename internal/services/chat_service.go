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

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ChatService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	userRepo         userReader
	engagements      engagementEvents
}

type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.ChatMessage
	RecipientID  int64
}

func NewChatService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	userRepo userReader,
	engagements engagementEvents,
) *ChatService {
	return &ChatService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		engagements:      engagements,
	}
}

func (s *ChatService) ListConversations(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.ConversationSummary, error) {
	if role != models.RoleClient && role != models.RoleTrainer {
		return nil, ErrForbidden
	}

	return s.conversationRepo.ListForParticipant(ctx, actorID)
}

// CreateConversation opens (or returns) the single conversation between a
// client and a trainer. Only clients open conversations; a trainer gets a
// conversation when a client starts one with them.
func (s *ChatService) CreateConversation(
	ctx context.Context,
	actorID int64,
	role string,
	trainerID int64,
) (*models.Conversation, error) {
	if role != models.RoleClient {
		return nil, ErrForbidden
	}
	if trainerID <= 0 || trainerID == actorID {
		return nil, ErrValidation
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if trainer.Role != models.RoleTrainer {
		return nil, ErrValidation
	}

	return s.conversationRepo.CreateOrGet(ctx, actorID, trainerID)
}

func (s *ChatService) ListMessages(
	ctx context.Context,
	actorID int64,
	role string,
	conversationID int64,
	page int,
	limit int,
) ([]models.ChatMessage, int, error) {
	if role != models.RoleClient && role != models.RoleTrainer {
		return nil, 0, ErrForbidden
	}
	if conversationID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrValidation
	}

	_, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)

	messages, total, err := txMessageRepo.ListByConversation(
		ctx,
		conversationID,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		return nil, 0, err
	}

	messageIDs := make([]int64, 0, len(messages))
	for _, message := range messages {
		messageIDs = append(messageIDs, message.ID)
	}

	if err := txMessageRepo.MarkMessagesRead(ctx, messageIDs, actorID); err != nil {
		return nil, 0, err
	}

	for i := range messages {
		if messages[i].SenderID != actorID {
			messages[i].IsRead = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// CanSend reports whether the actor may send into the conversation right
// now. Clients can always write; a trainer is locked out until the client
// has written first.
func (s *ChatService) CanSend(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) (bool, error) {
	conversation, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	clientHasWritten := true
	if actorID != conversation.ClientID {
		clientHasWritten, err = s.conversationRepo.HasMessageFrom(ctx, conversationID, conversation.ClientID)
		if err != nil {
			return false, err
		}
	}
	return messagingGateAllows(actorID, conversation, clientHasWritten) == nil, nil
}

// messagingGateAllows decides whether a participant may write into a
// conversation. The client side is always open; the trainer side stays
// locked until the client has written at least once.
func messagingGateAllows(senderID int64, conversation *models.Conversation, clientHasWritten bool) error {
	if senderID == conversation.ClientID {
		return nil
	}
	if !clientHasWritten {
		return ErrMessagingLocked
	}
	return nil
}

func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	role string,
	conversationID int64,
	content string,
) (*ChatDelivery, error) {
	if role != models.RoleClient && role != models.RoleTrainer {
		return nil, ErrForbidden
	}
	if conversationID <= 0 {
		return nil, ErrValidation
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrValidation
	}

	conversation, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	clientOpened := true
	if actorID != conversation.ClientID {
		// The gate is derived from message history, not a stored flag, so
		// it is re-checked on every trainer send.
		clientOpened, err = s.conversationRepo.HasMessageFrom(ctx, conversationID, conversation.ClientID)
		if err != nil {
			return nil, err
		}
	}
	if err := messagingGateAllows(actorID, conversation, clientOpened); err != nil {
		return nil, err
	}

	recipientID := conversation.ClientID
	if actorID == conversation.ClientID {
		recipientID = conversation.TrainerID
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	firstFromClient := false
	if actorID == conversation.ClientID {
		alreadyWritten, err := txConversationRepo.HasMessageFrom(ctx, conversationID, actorID)
		if err != nil {
			return nil, err
		}
		firstFromClient = !alreadyWritten
	}

	message, err := txMessageRepo.Create(ctx, conversationID, actorID, trimmed)
	if err != nil {
		return nil, err
	}

	if err := txConversationRepo.Touch(ctx, conversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// The client's opening message moves a liked pair to matched. Applied
	// after commit; the stage machine no-ops it past matched.
	if firstFromClient && s.engagements != nil {
		_, _ = s.engagements.ApplyEvent(ctx, conversation.ClientID, conversation.TrainerID, EventFirstMessageSent)
	}

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  recipientID,
	}, nil
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
