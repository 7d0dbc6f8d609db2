package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/logging"
)

type EventType string

const (
	EventTaskCreated     EventType = "task_created"
	EventTaskUpdated     EventType = "task_updated"
	EventTaskDeleted     EventType = "task_deleted"
	EventActivityCreated EventType = "activity_created"
)

// Event is one broadcast message. Payload must be JSON-serializable.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broadcaster publishes events to all currently-connected observers.
// Delivery is fire-and-forget: a disconnected observer misses the event.
type Broadcaster interface {
	Publish(event Event)
}

// subscriberBuffer is the per-observer channel capacity. An observer that
// falls this far behind starts dropping events and is expected to reconcile
// with a full list refresh.
const subscriberBuffer = 64

// Hub is an in-memory Broadcaster fanning events out to subscriber channels.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe registers a new observer and returns its ID and event channel.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes an observer and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Publish delivers the event to every subscriber without blocking. Events to
// full channels are dropped.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			logging.Logger.Warnw("dropping event for slow subscriber",
				"subscriber", id,
				"event", event.Type,
			)
		}
	}
}

// SubscriberCount returns the number of connected observers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
