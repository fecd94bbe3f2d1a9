package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	repo "github.com/quicktalk/quicktalk/internal/domain/repository"
	"github.com/quicktalk/quicktalk/internal/relay"
)

// ChatService is the relay between two users: it validates an inbound
// message, stamps and persists it, and fans it out to both live inboxes.
type ChatService struct {
	Messages repo.MessageRepository
	Hub      *relay.Hub
	Logger   *logrus.Logger
}

func NewChatService(messages repo.MessageRepository, hub *relay.Hub, logger *logrus.Logger) *ChatService {
	return &ChatService{Messages: messages, Hub: hub, Logger: logger}
}

// Submit relays one message. Messages with a blank sender, recipient,
// or content are dropped without an error; the live channel ignores
// malformed traffic rather than failing it. SentAt is assigned only
// when the caller left it zero. On success the persisted message goes
// to the sender's inbox and, unless this is a self-chat, the
// recipient's inbox. Delivery never blocks on slow subscribers.
func (s *ChatService) Submit(ctx context.Context, in entity.Message) (*entity.Message, error) {
	sender := strings.TrimSpace(in.Sender)
	recipient := strings.TrimSpace(in.Recipient)
	if sender == "" || recipient == "" || strings.TrimSpace(in.Content) == "" {
		s.Logger.WithFields(logrus.Fields{
			"sender":    in.Sender,
			"recipient": in.Recipient,
		}).Debug("dropping malformed message")
		return nil, nil
	}

	msg := entity.Message{
		Room:      RoomKey(sender, recipient),
		Sender:    sender,
		Recipient: recipient,
		Content:   in.Content,
		SentAt:    in.SentAt,
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	if err := s.Messages.Save(ctx, &msg); err != nil {
		return nil, err
	}

	s.Hub.Publish(sender, msg)
	if !strings.EqualFold(sender, recipient) {
		s.Hub.Publish(recipient, msg)
	}
	return &msg, nil
}

// History returns every message the user sent or received, oldest
// first (sent time ascending, id as tiebreak).
func (s *ChatService) History(ctx context.Context, username string) ([]entity.Message, error) {
	return s.Messages.ByParticipant(ctx, strings.TrimSpace(username))
}

// Conversation returns the full exchange between two users in either
// direction, in the same order as History.
func (s *ChatService) Conversation(ctx context.Context, userA, userB string) ([]entity.Message, error) {
	return s.Messages.ByRoom(ctx, RoomKey(userA, userB))
}
