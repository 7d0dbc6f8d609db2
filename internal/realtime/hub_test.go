package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	_, ch1 := hub.Subscribe()
	_, ch2 := hub.Subscribe()
	require.Equal(t, 2, hub.SubscriberCount())

	hub.Publish(Event{Type: EventTaskCreated, Payload: "payload"})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, EventTaskCreated, ev1.Type)
	assert.Equal(t, EventTaskCreated, ev2.Type)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Unsubscribing twice is harmless
	hub.Unsubscribe(id)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	_, ch := hub.Subscribe()

	// Publish past the buffer; the hub must not block
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(Event{Type: EventTaskUpdated})
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Publish(Event{Type: EventTaskDeleted})
}
