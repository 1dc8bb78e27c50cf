package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu        sync.Mutex
	published map[string]int
	dropped   map[string]int
	listeners int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{published: map[string]int{}, dropped: map[string]int{}}
}

func (r *countingRecorder) RecordPublished(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[event]++
}

func (r *countingRecorder) RecordDropped(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped[event]++
}

func (r *countingRecorder) SetListeners(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_PublishReachesEveryListener(t *testing.T) {
	rec := newCountingRecorder()
	hub := NewHub(4, testLogger(), rec)

	a := hub.Subscribe(1)
	b := hub.Subscribe(2)
	require.Equal(t, 2, hub.Count())
	assert.Equal(t, 2, rec.listeners)

	hub.Publish(TicketDeleted, map[string]uint64{"id": 7})

	for _, l := range []*Listener{a, b} {
		msg := <-l.C()
		assert.Equal(t, TicketDeleted, msg.Name)

		var body map[string]uint64
		require.NoError(t, json.Unmarshal(msg.Data, &body))
		assert.Equal(t, uint64(7), body["id"])
	}
	assert.Equal(t, 1, rec.published[TicketDeleted])
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	rec := newCountingRecorder()
	hub := NewHub(1, testLogger(), rec)
	l := hub.Subscribe(1)

	hub.Publish(TicketUpdated, map[string]int{"n": 1})
	hub.Publish(TicketUpdated, map[string]int{"n": 2})

	msg := <-l.C()
	assert.JSONEq(t, `{"n":1}`, string(msg.Data))
	assert.Equal(t, 1, rec.dropped[TicketUpdated])

	select {
	case extra := <-l.C():
		t.Fatalf("unexpected message %s", extra.Data)
	default:
	}
}

func TestHub_UnsubscribeClosesListener(t *testing.T) {
	hub := NewHub(1, testLogger(), nil)
	l := hub.Subscribe(1)

	hub.Unsubscribe(l.ID)
	hub.Unsubscribe(l.ID)

	_, open := <-l.C()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count())

	// publishing with nobody connected is a no-op
	hub.Publish(EventCreated, map[string]int{})
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub(1, testLogger(), nil)
	l := hub.Subscribe(1)

	hub.Shutdown()

	_, open := <-l.C()
	assert.False(t, open)

	late := hub.Subscribe(2)
	_, open = <-late.C()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count())
}
