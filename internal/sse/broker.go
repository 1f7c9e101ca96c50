// Package sse streams catalog change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Catalog event types.
const (
	EventSyncStarted     = "sync.started"
	EventSyncCompleted   = "sync.completed"
	EventSyncFailed      = "sync.failed"
	EventCatalogImported = "catalog.imported"
	EventCatalogPurged   = "catalog.purged"
	// EventStatsUpdated carries a full statistics snapshot. Bursts are
	// coalesced so clients only see the latest figures.
	EventStatsUpdated = "stats.updated"
)

const (
	clientBuffer     = 64
	defaultKeepAlive = 30 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broker fans catalog events out to connected clients. Clients that fall
// behind lose events instead of stalling publishers.
type Broker struct {
	statsEvery time.Duration
	keepAlive  time.Duration

	mu        sync.Mutex
	clients   map[chan []byte]struct{}
	nextID    uint64
	closed    bool
	lastStats time.Time
	pending   *Event
	flush     *time.Timer
}

// NewBroker creates a broker that emits at most one stats.updated event per
// statsEvery; the newest snapshot of a burst wins.
func NewBroker(statsEvery time.Duration) *Broker {
	if statsEvery <= 0 {
		statsEvery = 2 * time.Second
	}
	return &Broker{
		statsEvery: statsEvery,
		keepAlive:  defaultKeepAlive,
		clients:    make(map[chan []byte]struct{}),
	}
}

// Subscribe registers a client. The channel is closed by Unsubscribe or
// Close; after Close it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Publish sends an event to every client. stats.updated events go through
// the coalescer.
func (b *Broker) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if event.Type == EventStatsUpdated {
		b.queueStats(event)
		return
	}
	b.broadcast(event)
}

// PublishCatalogEvent implements the catalog's event sink. Nil data is sent
// as an empty object.
func (b *Broker) PublishCatalogEvent(kind string, data any) {
	if data == nil {
		data = struct{}{}
	}
	b.Publish(Event{Type: kind, Data: data})
}

// queueStats sends ev now if the interval has passed, otherwise keeps it as
// the pending snapshot and arms a flush. b.mu must be held.
func (b *Broker) queueStats(ev Event) {
	wait := b.statsEvery - time.Since(b.lastStats)
	if wait <= 0 && b.flush == nil {
		b.lastStats = time.Now()
		b.broadcast(ev)
		return
	}
	b.pending = &ev
	if b.flush == nil {
		b.flush = time.AfterFunc(wait, b.flushStats)
	}
}

func (b *Broker) flushStats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flush = nil
	if b.closed || b.pending == nil {
		return
	}
	ev := *b.pending
	b.pending = nil
	b.lastStats = time.Now()
	b.broadcast(ev)
}

// broadcast frames ev with a sequence id. b.mu must be held.
func (b *Broker) broadcast(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	b.nextID++
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", b.nextID, ev.Type, payload))
	for ch := range b.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Close disconnects every client and drops a pending stats snapshot.
// Later calls do nothing.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.flush != nil {
		b.flush.Stop()
		b.flush = nil
	}
	b.pending = nil
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
}

// ServeHTTP streams events to one client (GET /api/events). A comment line
// is written every keep-alive interval so idle proxies keep the stream open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
