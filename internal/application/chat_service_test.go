package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	"github.com/quicktalk/quicktalk/internal/relay"
)

type memMessageRepo struct {
	nextID   int64
	messages []entity.Message
}

func (r *memMessageRepo) Save(_ context.Context, m *entity.Message) error {
	r.nextID++
	m.ID = r.nextID
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memMessageRepo) ByParticipant(_ context.Context, username string) ([]entity.Message, error) {
	var out []entity.Message
	for _, m := range r.messages {
		if m.Sender == username || m.Recipient == username {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *memMessageRepo) ByRoom(_ context.Context, room string) ([]entity.Message, error) {
	var out []entity.Message
	for _, m := range r.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func sortMessages(msgs []entity.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
}

func newTestChatService() (*ChatService, *memMessageRepo, *relay.Hub) {
	messages := &memMessageRepo{}
	hub := relay.NewHub()
	return NewChatService(messages, hub, quietLogger()), messages, hub
}

func receiveOne(t *testing.T, ch <-chan entity.Message) entity.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return entity.Message{}
	}
}

func TestSubmitPersistsAndDelivers(t *testing.T) {
	svc, repo, hub := newTestChatService()
	ctx := context.Background()

	aliceCh, cancelA := hub.Subscribe("alice")
	defer cancelA()
	bobCh, cancelB := hub.Subscribe("bob")
	defer cancelB()

	msg, err := svc.Submit(ctx, entity.Message{Sender: "alice", Recipient: "bob", Content: "hi bob"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "alice|bob", msg.Room)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.SentAt.IsZero())

	got := receiveOne(t, aliceCh)
	assert.Equal(t, "hi bob", got.Content)
	got = receiveOne(t, bobCh)
	assert.Equal(t, "hi bob", got.Content)

	require.Len(t, repo.messages, 1)
}

func TestSubmitBothDirectionsShareRoom(t *testing.T) {
	svc, _, _ := newTestChatService()
	ctx := context.Background()

	first, err := svc.Submit(ctx, entity.Message{Sender: "alice", Recipient: "bob", Content: "hi"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, entity.Message{Sender: "bob", Recipient: "alice", Content: "hey"})
	require.NoError(t, err)

	assert.Equal(t, first.Room, second.Room)

	conv, err := svc.Conversation(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi", conv[0].Content)
	assert.Equal(t, "hey", conv[1].Content)
}

func TestSubmitDropsMalformedMessages(t *testing.T) {
	svc, repo, hub := newTestChatService()
	ctx := context.Background()

	ch, cancel := hub.Subscribe("bob")
	defer cancel()

	for _, in := range []entity.Message{
		{Sender: "", Recipient: "bob", Content: "hi"},
		{Sender: "alice", Recipient: "", Content: "hi"},
		{Sender: "alice", Recipient: "bob", Content: "   "},
	} {
		msg, err := svc.Submit(ctx, in)
		assert.NoError(t, err)
		assert.Nil(t, msg)
	}

	assert.Empty(t, repo.messages)
	select {
	case m := <-ch:
		t.Fatalf("unexpected delivery: %+v", m)
	default:
	}
}

func TestSubmitSelfChatDeliversOnce(t *testing.T) {
	svc, _, hub := newTestChatService()
	ctx := context.Background()

	ch, cancel := hub.Subscribe("siri")
	defer cancel()

	msg, err := svc.Submit(ctx, entity.Message{Sender: "siri", Recipient: "siri", Content: "note to self"})
	require.NoError(t, err)
	assert.Equal(t, "siri|siri", msg.Room)

	receiveOne(t, ch)
	select {
	case m := <-ch:
		t.Fatalf("duplicate delivery: %+v", m)
	default:
	}
}

func TestSubmitKeepsCallerSentAt(t *testing.T) {
	svc, _, _ := newTestChatService()
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	msg, err := svc.Submit(context.Background(), entity.Message{
		Sender: "alice", Recipient: "bob", Content: "backdated", SentAt: stamp,
	})
	require.NoError(t, err)
	assert.True(t, msg.SentAt.Equal(stamp))
}

func TestHistoryOrderAndIdempotence(t *testing.T) {
	svc, _, _ := newTestChatService()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, in := range []entity.Message{
		{Sender: "alice", Recipient: "bob", Content: "one"},
		{Sender: "bob", Recipient: "alice", Content: "two"},
		{Sender: "alice", Recipient: "carol", Content: "three"},
	} {
		in.SentAt = base.Add(time.Duration(i) * time.Minute)
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)
	}

	hist, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "one", hist[0].Content)
	assert.Equal(t, "two", hist[1].Content)
	assert.Equal(t, "three", hist[2].Content)

	// Reading history has no side effects.
	again, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, hist, again)

	bobHist, err := svc.History(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobHist, 2)

	carolHist, err := svc.History(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, carolHist, 1)
	assert.Equal(t, "three", carolHist[0].Content)
}

func TestConversationDirectionIndependent(t *testing.T) {
	svc, _, _ := newTestChatService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, entity.Message{Sender: "alice", Recipient: "bob", Content: "hi"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, entity.Message{Sender: "alice", Recipient: "carol", Content: "other thread"})
	require.NoError(t, err)

	ab, err := svc.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	ba, err := svc.Conversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	require.Len(t, ab, 1)
	assert.Equal(t, "hi", ab[0].Content)
}
