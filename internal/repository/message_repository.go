package repository

import (
	"context"
	"errors"

	"pulse-chat/internal/domain/message"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMessageRepository struct {
	pool *pgxpool.Pool
	tx   *PgTxRunner
}

func NewMessageRepository(pool *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool, tx: NewTxRunner(pool)}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := querier(ctx, r.pool).Exec(ctx, `
			INSERT INTO messages (id, conversation_id, sender_id, content, created_at, edited_at, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.ConversationID, m.SenderID, m.Content, m.CreatedAt, m.EditedAt, m.DeletedAt); err != nil {
			if isUniqueViolation(err) {
				return pulse_errors.ErrConflict
			}
			return err
		}
		for _, a := range m.Attachments {
			if _, err := querier(ctx, r.pool).Exec(ctx, `
				INSERT INTO message_attachments (id, message_id, url, mime_type, size_bytes, file_name, width, height)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				uuid.New(), m.ID, a.URL, a.MimeType, a.SizeBytes, a.FileName, a.Width, a.Height); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := querier(ctx, r.pool).QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at, edited_at, deleted_at
		FROM messages WHERE id = $1`, id).
		Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.EditedAt, &m.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return message.Message{}, pulse_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	if err := r.loadChildren(ctx, []*message.Message{&m}); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

// Update is a full-aggregate upsert: the message row is rewritten and the
// reaction set is replaced wholesale. Attachments are immutable and left
// untouched.
func (r *PostgresMessageRepository) Update(ctx context.Context, m message.Message) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		tag, err := querier(ctx, r.pool).Exec(ctx, `
			UPDATE messages SET content = $2, edited_at = $3, deleted_at = $4
			WHERE id = $1`,
			m.ID, m.Content, m.EditedAt, m.DeletedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pulse_errors.ErrNotFound
		}
		if _, err := querier(ctx, r.pool).Exec(ctx,
			`DELETE FROM message_reactions WHERE message_id = $1`, m.ID); err != nil {
			return err
		}
		for _, reaction := range m.Reactions {
			if _, err := querier(ctx, r.pool).Exec(ctx, `
				INSERT INTO message_reactions (message_id, user_id, emoji, created_at)
				VALUES ($1, $2, $3, $4)`,
				m.ID, reaction.UserID, reaction.Emoji, reaction.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := q.Query(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at, edited_at, deleted_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`, conversationID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []message.Message
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
			&m.CreatedAt, &m.EditedAt, &m.DeletedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	refs := make([]*message.Message, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.loadChildren(ctx, refs); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// loadChildren fills attachments and reactions for the given messages with
// two queries instead of one pair per message.
func (r *PostgresMessageRepository) loadChildren(ctx context.Context, msgs []*message.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*message.Message, len(msgs))
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	q := querier(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT message_id, url, mime_type, size_bytes, file_name, width, height
		FROM message_attachments WHERE message_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			msgID uuid.UUID
			a     message.Attachment
		)
		if err := rows.Scan(&msgID, &a.URL, &a.MimeType, &a.SizeBytes, &a.FileName, &a.Width, &a.Height); err != nil {
			rows.Close()
			return err
		}
		if m, ok := byID[msgID]; ok {
			m.Attachments = append(m.Attachments, a)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
		SELECT message_id, user_id, emoji, created_at
		FROM message_reactions WHERE message_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var reaction message.Reaction
		if err := rows.Scan(&reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt); err != nil {
			return err
		}
		if m, ok := byID[reaction.MessageID]; ok {
			m.Reactions = append(m.Reactions, reaction)
		}
	}
	return rows.Err()
}
