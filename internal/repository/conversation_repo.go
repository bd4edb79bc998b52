package repository

import (
	"context"
	"database/sql"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) CreateOrGet(
	ctx context.Context,
	clientID int64,
	trainerID int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (client_id, trainer_id)
		VALUES ($1, $2)
		ON CONFLICT (client_id, trainer_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, client_id, trainer_id, created_at, updated_at
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, clientID, trainerID).Scan(
		&conversation.ID,
		&conversation.ClientID,
		&conversation.TrainerID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) GetByIDForParticipant(
	ctx context.Context,
	conversationID int64,
	participantID int64,
) (*models.Conversation, error) {
	query := `
		SELECT id, client_id, trainer_id, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND (client_id = $2 OR trainer_id = $2)
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, participantID).Scan(
		&conversation.ID,
		&conversation.ClientID,
		&conversation.TrainerID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

// HasMessageFrom is the messaging-gate existence check: cheap, derived, and
// re-evaluated on every send instead of cached.
func (r *ConversationRepository) HasMessageFrom(
	ctx context.Context,
	conversationID int64,
	senderID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM messages
			WHERE conversation_id = $1 AND sender_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, conversationID, senderID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.client_id,
			c.trainer_id,
			c.created_at,
			c.updated_at,
			lm.id,
			lm.conversation_id,
			lm.sender_id,
			lm.content,
			lm.is_read,
			lm.created_at,
			COALESCE(uc.unread_count, 0),
			COALESCE(cf.client_has_written, FALSE)
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND is_read = FALSE
		) uc ON TRUE
		LEFT JOIN LATERAL (
			SELECT EXISTS (
				SELECT 1 FROM messages
				WHERE conversation_id = c.id AND sender_id = c.client_id
			) AS client_has_written
		) cf ON TRUE
		WHERE c.client_id = $1 OR c.trainer_id = $1
		ORDER BY COALESCE(lm.created_at, c.updated_at, c.created_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID sql.NullInt64
		var messageConversationID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageContent sql.NullString
		var messageIsRead sql.NullBool
		var messageCreatedAt sql.NullTime
		var clientHasWritten bool

		if err := rows.Scan(
			&summary.ID,
			&summary.ClientID,
			&summary.TrainerID,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&summary.UnreadCount,
			&clientHasWritten,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			summary.LastMessage = &models.ChatMessage{
				ID:             messageID.Int64,
				ConversationID: messageConversationID.Int64,
				SenderID:       messageSenderID.Int64,
				Content:        messageContent.String,
				IsRead:         messageIsRead.Bool,
				CreatedAt:      messageCreatedAt.Time,
			}
		}

		// Trainers may only reply once the client has written; clients can
		// always send.
		summary.CanReply = participantID == summary.ClientID || clientHasWritten

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}
