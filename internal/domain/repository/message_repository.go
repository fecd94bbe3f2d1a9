package repository

import (
	"context"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
)

// MessageRepository is the append-only message store. Both queries
// return messages ordered by sent time ascending, id ascending as the
// tiebreak; that ordering is part of the contract.
type MessageRepository interface {
	Save(ctx context.Context, m *entity.Message) error
	ByParticipant(ctx context.Context, username string) ([]entity.Message, error)
	ByRoom(ctx context.Context, room string) ([]entity.Message, error)
}
