package repository

import (
	"bytes"
	"context"
	"errors"
	"time"

	"pulse-chat/internal/domain/conversation"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConversationRepository struct {
	pool *pgxpool.Pool
	tx   *PgTxRunner
}

func NewConversationRepository(pool *pgxpool.Pool) *PostgresConversationRepository {
	return &PostgresConversationRepository{pool: pool, tx: NewTxRunner(pool)}
}

const conversationColumns = `id, created_by, last_message_id, last_message_sender_id,
	last_message_content, last_message_has_attachments, last_message_at,
	created_at, updated_at`

func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := r.insertConversation(ctx, c); err != nil {
			if isUniqueViolation(err) {
				return pulse_errors.ErrConflict
			}
			return err
		}
		return r.insertParticipants(ctx, c)
	})
}

func (r *PostgresConversationRepository) FindOrCreateDirect(ctx context.Context, c *conversation.Conversation) (conversation.Conversation, bool, error) {
	var (
		stored  conversation.Conversation
		created bool
	)
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		low, high := orderedPair(c.Participants[0].UserID, c.Participants[1].UserID)
		tag, err := querier(ctx, r.pool).Exec(ctx, `
			INSERT INTO conversations (id, created_by, user_low, user_high, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_low, user_high) DO NOTHING`,
			c.ID, c.CreatedBy, low, high, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			if err := r.insertParticipants(ctx, c); err != nil {
				return err
			}
			stored = *c
			created = true
			return nil
		}
		// Lost the race or the pair already existed; hand back the winner.
		found, err := r.getByPair(ctx, low, high)
		if err != nil {
			return err
		}
		stored = found
		return nil
	})
	if err != nil {
		return conversation.Conversation{}, false, err
	}
	return stored, created, nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	row := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	return r.scanWithParticipants(ctx, row)
}

func (r *PostgresConversationRepository) getByPair(ctx context.Context, low, high uuid.UUID) (conversation.Conversation, error) {
	row := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE user_low = $1 AND user_high = $2`, low, high)
	return r.scanWithParticipants(ctx, row)
}

func (r *PostgresConversationRepository) Update(ctx context.Context, c conversation.Conversation) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		var (
			lastID, lastSender *uuid.UUID
			lastContent        *string
			lastHasAttachments *bool
			lastAt             *time.Time
		)
		if c.LastMessage != nil {
			lastID = &c.LastMessage.MessageID
			lastSender = &c.LastMessage.SenderID
			lastContent = c.LastMessage.Content
			has := c.LastMessage.HasAttachments
			lastHasAttachments = &has
			at := c.LastMessage.SentAt
			lastAt = &at
		}
		tag, err := querier(ctx, r.pool).Exec(ctx, `
			UPDATE conversations SET
				last_message_id = $2, last_message_sender_id = $3,
				last_message_content = $4, last_message_has_attachments = $5,
				last_message_at = $6, updated_at = $7
			WHERE id = $1`,
			c.ID, lastID, lastSender, lastContent, lastHasAttachments, lastAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pulse_errors.ErrNotFound
		}
		for _, p := range c.Participants {
			if _, err := querier(ctx, r.pool).Exec(ctx,
				`UPDATE participants SET last_read_at = $3 WHERE conversation_id = $1 AND user_id = $2`,
				c.ID, p.UserID, p.LastReadAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := q.Query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE id IN (SELECT conversation_id FROM participants WHERE user_id = $1)
		ORDER BY updated_at DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []conversation.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		participants, err := r.loadParticipants(ctx, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Participants = participants
	}
	return out, total, nil
}

func (r *PostgresConversationRepository) insertConversation(ctx context.Context, c *conversation.Conversation) error {
	low, high := orderedPair(c.Participants[0].UserID, c.Participants[1].UserID)
	_, err := querier(ctx, r.pool).Exec(ctx, `
		INSERT INTO conversations (id, created_by, user_low, user_high, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.CreatedBy, low, high, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *PostgresConversationRepository) insertParticipants(ctx context.Context, c *conversation.Conversation) error {
	for _, p := range c.Participants {
		if _, err := querier(ctx, r.pool).Exec(ctx, `
			INSERT INTO participants (conversation_id, user_id, joined_at, last_read_at)
			VALUES ($1, $2, $3, $4)`,
			c.ID, p.UserID, p.JoinedAt, p.LastReadAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresConversationRepository) loadParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error) {
	rows, err := querier(ctx, r.pool).Query(ctx, `
		SELECT user_id, joined_at, last_read_at FROM participants
		WHERE conversation_id = $1 ORDER BY joined_at, user_id`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []conversation.Participant
	for rows.Next() {
		var p conversation.Participant
		if err := rows.Scan(&p.UserID, &p.JoinedAt, &p.LastReadAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresConversationRepository) scanWithParticipants(ctx context.Context, row pgx.Row) (conversation.Conversation, error) {
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conversation.Conversation{}, pulse_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	participants, err := r.loadParticipants(ctx, c.ID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	c.Participants = participants
	return c, nil
}

func scanConversation(row pgx.Row) (conversation.Conversation, error) {
	var (
		c                  conversation.Conversation
		lastID, lastSender *uuid.UUID
		lastContent        *string
		lastHasAttachments *bool
		lastAt             *time.Time
	)
	if err := row.Scan(&c.ID, &c.CreatedBy, &lastID, &lastSender, &lastContent,
		&lastHasAttachments, &lastAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return conversation.Conversation{}, err
	}
	if lastID != nil && lastSender != nil && lastAt != nil {
		preview := conversation.LastMessage{
			MessageID: *lastID,
			SenderID:  *lastSender,
			Content:   lastContent,
			SentAt:    *lastAt,
		}
		if lastHasAttachments != nil {
			preview.HasAttachments = *lastHasAttachments
		}
		c.LastMessage = &preview
	}
	return c, nil
}

// orderedPair canonicalizes the participant pair for the uniqueness
// constraint.
func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}
