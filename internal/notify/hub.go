// Package notify fans out domain facts to connected real-time listeners.
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Fact names published after a successful commit.
const (
	TicketCreated       = "ticket:created"
	TicketUpdated       = "ticket:updated"
	TicketDeleted       = "ticket:deleted"
	EventCreated        = "event:created"
	AttachmentCreated   = "attachment:created"
	AnnouncementCreated = "announcement:created"
	AnnouncementDeleted = "announcement:deleted"
	UserUpdated         = "user:updated"
)

// DefaultBufferSize is the per-listener queue length.
const DefaultBufferSize = 64

// Message is one encoded fact.
type Message struct {
	Name string
	Data json.RawMessage
}

// Recorder receives delivery statistics.
type Recorder interface {
	RecordPublished(event string)
	RecordDropped(event string)
	SetListeners(n int)
}

// Listener is one connected stream consumer.
type Listener struct {
	ID     string
	UserID uint64

	send chan Message
	once sync.Once
}

// C returns the receive side of the listener queue. It is closed on
// Unsubscribe or Shutdown.
func (l *Listener) C() <-chan Message {
	return l.send
}

func (l *Listener) close() {
	l.once.Do(func() { close(l.send) })
}

// Hub is the process-wide listener registry. Publish never blocks: a listener
// whose buffer is full misses the message.
type Hub struct {
	mu         sync.RWMutex
	listeners  map[string]*Listener
	bufferSize int
	closed     bool

	logger   *slog.Logger
	recorder Recorder
}

func NewHub(bufferSize int, logger *slog.Logger, recorder Recorder) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		listeners:  make(map[string]*Listener),
		bufferSize: bufferSize,
		logger:     logger,
		recorder:   recorder,
	}
}

// Subscribe registers a listener for userID. After Shutdown the returned
// listener is already closed.
func (h *Hub) Subscribe(userID uint64) *Listener {
	l := &Listener{
		ID:     uuid.New().String(),
		UserID: userID,
		send:   make(chan Message, h.bufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		l.close()
		return l
	}
	h.listeners[l.ID] = l
	n := len(h.listeners)
	h.mu.Unlock()

	h.setListeners(n)
	h.logger.Debug("stream listener registered", "listener_id", l.ID, "user_id", userID)
	return l
}

// Unsubscribe removes and closes a listener. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	if ok {
		delete(h.listeners, id)
	}
	n := len(h.listeners)
	h.mu.Unlock()

	if !ok {
		return
	}
	l.close()
	h.setListeners(n)
	h.logger.Debug("stream listener removed", "listener_id", id, "user_id", l.UserID)
}

// Publish encodes payload once and offers it to every listener.
func (h *Hub) Publish(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode notification", "event", name, "error", err)
		return
	}
	msg := Message{Name: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, l := range h.listeners {
		select {
		case l.send <- msg:
		default:
			h.logger.Warn("stream listener buffer full, dropping notification",
				"event", name,
				"listener_id", l.ID,
				"user_id", l.UserID,
			)
			if h.recorder != nil {
				h.recorder.RecordDropped(name)
			}
		}
	}
	if h.recorder != nil {
		h.recorder.RecordPublished(name)
	}
}

// Count returns the number of connected listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Shutdown closes every listener and rejects new subscriptions.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	listeners := h.listeners
	h.listeners = make(map[string]*Listener)
	h.mu.Unlock()

	for _, l := range listeners {
		l.close()
	}
	h.setListeners(0)
}

func (h *Hub) setListeners(n int) {
	if h.recorder != nil {
		h.recorder.SetListeners(n)
	}
}
