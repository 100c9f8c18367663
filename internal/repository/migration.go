package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		created_by UUID NOT NULL,
		user_low UUID NOT NULL,
		user_high UUID NOT NULL,
		last_message_id UUID,
		last_message_sender_id UUID,
		last_message_content TEXT,
		last_message_has_attachments BOOLEAN,
		last_message_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT conversations_pair_unique UNIQUE (user_low, user_high),
		CONSTRAINT conversations_pair_ordered CHECK (user_low < user_high)
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL,
		last_read_at TIMESTAMPTZ,
		PRIMARY KEY (conversation_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS participants_user_idx ON participants (user_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL,
		content TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		edited_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_created_idx
		ON messages (conversation_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS message_attachments (
		id UUID PRIMARY KEY,
		message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		width INT,
		height INT
	)`,
	`CREATE INDEX IF NOT EXISTS message_attachments_message_idx ON message_attachments (message_id)`,
	`CREATE TABLE IF NOT EXISTS message_reactions (
		message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		emoji TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (message_id, user_id, emoji)
	)`,
}

// Migrate applies the schema statements in order. Every statement is
// idempotent so startup can always run the full list.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
