// Package sse implements a Server-Sent Events broker for toasts and state
// change notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/theme"
)

// Event types.
const (
	TypeToast           = "toast"
	TypeGraphUpdated    = "graph.updated"
	TypeSettingsChanged = "settings.changed"
	TypeThemeUpdated    = "theme.updated"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// change is an optional event plus a request for a throttled graph.updated.
type change struct {
	event *Event
	graph bool
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal loop owns the client set and the graph throttle state.
// Public methods talk to it over channels.
type Broker struct {
	graphMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits graph.updated at most once per
// graphThrottle. A change that arrives inside the window is flushed when the
// window ends.
func NewBroker(graphThrottle time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}

	b := &Broker{
		graphMin:      graphThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastGraph time.Time
	trailing := time.NewTimer(b.graphMin)
	trailing.Stop()
	trailingArmed := false

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client: drop rather than block the loop.
			}
		}
	}
	graphUpdated := func(now time.Time) {
		lastGraph = now
		broadcast(Event{Type: TypeGraphUpdated, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			trailing.Stop()
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changeCh:
			if c.event != nil {
				broadcast(*c.event)
			}
			if !c.graph {
				continue
			}
			now := time.Now()
			if wait := b.graphMin - now.Sub(lastGraph); wait > 0 {
				if !trailingArmed {
					trailing.Reset(wait)
					trailingArmed = true
				}
				continue
			}
			graphUpdated(now)

		case <-trailing.C:
			trailingArmed = false
			graphUpdated(time.Now())

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

func (b *Broker) send(c change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- c:
	case <-b.stopped:
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.send(change{event: &event})
}

// Notify broadcasts a toast.
func (b *Broker) Notify(t models.Toast) {
	b.Publish(Event{Type: TypeToast, Data: t})
}

// NoteChanged broadcasts note.<kind> and a throttled graph.updated.
func (b *Broker) NoteChanged(kind, id string) {
	b.send(change{
		event: &Event{Type: "note." + kind, Data: map[string]string{"id": id}},
		graph: true,
	})
}

// GraphChanged requests a throttled graph.updated.
func (b *Broker) GraphChanged() {
	b.send(change{graph: true})
}

// SettingsChanged broadcasts a settings write.
func (b *Broker) SettingsChanged(key, value string) {
	b.Publish(Event{Type: TypeSettingsChanged, Data: map[string]string{"key": key, "value": value}})
}

// ThemeChanged broadcasts the new active theme.
func (b *Broker) ThemeChanged(a theme.Active) {
	b.Publish(Event{Type: TypeThemeUpdated, Data: a})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
