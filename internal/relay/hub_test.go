package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
)

func recvOne(t *testing.T, ch <-chan entity.Message) entity.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return entity.Message{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe("siri")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("siri")
	defer cancel2()

	h.Publish("siri", entity.Message{Content: "hi"})

	assert.Equal(t, "hi", recvOne(t, ch1).Content)
	assert.Equal(t, "hi", recvOne(t, ch2).Content)
}

func TestHandleIsNormalized(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("  Siri ")
	defer cancel()

	h.Publish("siri", entity.Message{Content: "hey"})
	assert.Equal(t, "hey", recvOne(t, ch).Content)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	h := NewHub()
	h.Publish("nobody", entity.Message{Content: "lost"})
	assert.Equal(t, 0, h.Subscribers("nobody"))
}

func TestCancelDetachesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("siri")
	require.Equal(t, 1, h.Subscribers("siri"))

	cancel()
	cancel() // idempotent

	assert.Equal(t, 0, h.Subscribers("siri"))
	_, open := <-ch
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe("siri")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < inboxBuffer*4; i++ {
			h.Publish("siri", entity.Message{ID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}
