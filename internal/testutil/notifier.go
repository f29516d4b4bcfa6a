package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
)

type Sent struct {
	Event realtime.Event
	To    []uuid.UUID
}

// RecordingNotifier keeps every event it is asked to push.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Sent
}

func (n *RecordingNotifier) Notify(_ context.Context, event realtime.Event, userIDs ...uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Sent{Event: event, To: userIDs})
}

func (n *RecordingNotifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

// Types returns the event types in send order.
func (n *RecordingNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Event.Type)
	}
	return out
}
