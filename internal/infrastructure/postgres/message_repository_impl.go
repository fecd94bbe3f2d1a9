package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	"github.com/quicktalk/quicktalk/internal/domain/repository"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Save(ctx context.Context, m *entity.Message) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (room, sender, recipient, content, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, m.Room, m.Sender, m.Recipient, m.Content, m.SentAt)
	return row.Scan(&m.ID)
}

func collectMessages(rows pgx.Rows) ([]entity.Message, error) {
	defer rows.Close()
	out := make([]entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.Room, &m.Sender, &m.Recipient, &m.Content, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ByParticipant returns every message sent or received by the user,
// ordered by sent time then id.
func (r *MessageRepository) ByParticipant(ctx context.Context, username string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room, sender, recipient, content, sent_at
		FROM chat_messages
		WHERE sender = $1 OR recipient = $1
		ORDER BY sent_at ASC, id ASC
	`, username)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// ByRoom returns the whole conversation for a room key, ordered by
// sent time then id.
func (r *MessageRepository) ByRoom(ctx context.Context, room string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room, sender, recipient, content, sent_at
		FROM chat_messages
		WHERE room = $1
		ORDER BY sent_at ASC, id ASC
	`, room)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
