package bridge

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Event types pushed to the web views.
const (
	EventCookiesSet     = "cookies-set"
	EventCookiesCleared = "cookies-cleared"
	EventNavigate       = "navigate"
	EventConnections    = "connections"
)

// ConnectionsDebounce is the window in which connection changes are coalesced into one event.
const ConnectionsDebounce = 100 * time.Millisecond

type (
	// An Event is a message broadcast to every connected socket.
	Event struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}

	// A Conn is a socket that can receive events.
	Conn interface {
		WriteJSON(v any) error
		Close() error
	}

	// A Tracker keeps the open sockets grouped by tab.
	Tracker struct {
		mu        sync.Mutex
		tabs      map[string]map[Conn]struct{}
		debounced func(f func())
		log       logrus.FieldLogger
	}
)

var _ Conn = (*websocket.Conn)(nil)

// NewTracker returns a new Tracker.
func NewTracker(log logrus.FieldLogger) *Tracker {
	return &Tracker{
		tabs:      map[string]map[Conn]struct{}{},
		debounced: debounce.New(ConnectionsDebounce),
		log:       log,
	}
}

// Add registers conn for the given tab.
func (t *Tracker) Add(tab string, conn Conn) {
	t.mu.Lock()
	conns, ok := t.tabs[tab]
	if !ok {
		conns = map[Conn]struct{}{}
		t.tabs[tab] = conns
	}
	conns[conn] = struct{}{}
	t.mu.Unlock()

	t.log.WithField("tab", tab).Debug("socket connected")
	t.changed()
}

// Remove unregisters conn from the given tab. Removing an unknown conn is a no-op.
func (t *Tracker) Remove(tab string, conn Conn) {
	t.mu.Lock()
	removed := t.remove(tab, conn)
	t.mu.Unlock()

	if removed {
		t.log.WithField("tab", tab).Debug("socket disconnected")
		t.changed()
	}
}

// Count returns the number of sockets opened by the given tab.
func (t *Tracker) Count(tab string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tabs[tab])
}

// Total returns the number of open sockets.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return lo.SumBy(lo.Values(t.tabs), func(conns map[Conn]struct{}) int {
		return len(conns)
	})
}

// Snapshot returns the number of sockets per tab.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return lo.MapValues(t.tabs, func(conns map[Conn]struct{}, _ string) int {
		return len(conns)
	})
}

// Broadcast sends the event to every socket.
// A socket that cannot be written is closed and forgotten.
func (t *Tracker) Broadcast(event Event) {
	if t.broadcast(event) > 0 {
		t.changed()
	}
}

// broadcast returns the number of dropped sockets.
func (t *Tracker) broadcast(event Event) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var dropped int
	for tab, conns := range t.tabs {
		for conn := range conns {
			if err := conn.WriteJSON(event); err != nil {
				t.log.WithField("tab", tab).WithError(err).Warn("dropping socket")
				t.remove(tab, conn)
				conn.Close()
				dropped++
			}
		}
	}
	return dropped
}

func (t *Tracker) remove(tab string, conn Conn) bool {
	conns, ok := t.tabs[tab]
	if !ok {
		return false
	}
	if _, ok = conns[conn]; !ok {
		return false
	}

	delete(conns, conn)
	if len(conns) == 0 {
		delete(t.tabs, tab)
	}
	return true
}

func (t *Tracker) changed() {
	t.debounced(func() {
		t.Broadcast(Event{
			Type: EventConnections,
			Data: t.Snapshot(),
		})
	})
}
