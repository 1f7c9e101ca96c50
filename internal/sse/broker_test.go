package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/starsys/internal/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type frame struct {
	id, event, data string
}

func parseFrame(t *testing.T, raw []byte) frame {
	t.Helper()
	var f frame
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		key, value, _ := strings.Cut(line, ": ")
		switch key {
		case "id":
			f.id = value
		case "event":
			f.event = value
		case "data":
			f.data = value
		}
	}
	return f
}

// drain reads frames until none arrives for quiet.
func drain(t *testing.T, ch chan []byte, quiet time.Duration) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case raw, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, parseFrame(t, raw))
		case <-time.After(quiet):
			return out
		}
	}
}

func statsFrame(t *testing.T, f frame) search.Stats {
	t.Helper()
	var st search.Stats
	if err := json.Unmarshal([]byte(f.data), &st); err != nil {
		t.Fatalf("stats payload %q: %v", f.data, err)
	}
	return st
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after unsubscribe = %d", n)
	}
	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
	b.Unsubscribe(ch)
}

func TestCatalogEventsCarrySequenceIDs(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()

	b.PublishCatalogEvent(EventSyncStarted, map[string]string{"run_id": "r1"})
	b.PublishCatalogEvent(EventCatalogPurged, nil)

	got := drain(t, ch, 50*time.Millisecond)
	if len(got) != 2 {
		t.Fatalf("frames = %+v", got)
	}
	if got[0].id != "1" || got[0].event != EventSyncStarted || got[0].data != `{"run_id":"r1"}` {
		t.Errorf("first frame = %+v", got[0])
	}
	if got[1].id != "2" || got[1].event != EventCatalogPurged || got[1].data != "{}" {
		t.Errorf("nil data should be sent as an empty object, got %+v", got[1])
	}
}

func TestStatsSnapshotsAreCoalesced(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()

	snapshot := func(n int) search.Stats {
		return search.Stats{TotalSystems: n, SpectralTypeDistribution: map[string]int{"G": n}}
	}

	// The first snapshot goes out at once; the burst after it collapses
	// into one trailing event with the newest figures.
	b.PublishCatalogEvent(EventStatsUpdated, snapshot(1))
	b.PublishCatalogEvent(EventCatalogImported, map[string]int{"saved": 2})
	b.PublishCatalogEvent(EventStatsUpdated, snapshot(2))
	b.PublishCatalogEvent(EventStatsUpdated, snapshot(3))

	got := drain(t, ch, 300*time.Millisecond)
	var stats []search.Stats
	imports := 0
	for _, f := range got {
		switch f.event {
		case EventStatsUpdated:
			stats = append(stats, statsFrame(t, f))
		case EventCatalogImported:
			imports++
		}
	}
	if imports != 1 {
		t.Errorf("import events = %d, want 1", imports)
	}
	if len(stats) != 2 {
		t.Fatalf("stats events = %d, want 2", len(stats))
	}
	if stats[0].TotalSystems != 1 || stats[1].TotalSystems != 3 {
		t.Errorf("snapshots = %d then %d, want 1 then 3", stats[0].TotalSystems, stats[1].TotalSystems)
	}
	if stats[1].SpectralTypeDistribution["G"] != 3 {
		t.Errorf("distribution = %v", stats[1].SpectralTypeDistribution)
	}
}

func TestSlowClientDoesNotBlockPublisher(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer+10; i++ {
			b.PublishCatalogEvent(EventCatalogImported, map[string]int{"saved": i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full client buffer")
	}
	if n := len(ch); n != clientBuffer {
		t.Errorf("buffered frames = %d, want %d", n, clientBuffer)
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker(time.Second)
	b.keepAlive = 20 * time.Millisecond
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.ClientCount() != 1 {
		t.Fatal("handler did not subscribe")
	}

	b.PublishCatalogEvent(EventStatsUpdated, search.Stats{TotalSystems: 7})
	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: stats.updated\ndata: {\"total_systems\":7") {
		t.Errorf("stats snapshot missing from stream: %q", body)
	}
	if !strings.Contains(body, ": keep-alive\n\n") {
		t.Errorf("keep-alive comment missing: %q", body)
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after disconnect = %d", n)
	}
}

func TestCloseDisconnectsAndDropsPendingStats(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()

	b.PublishCatalogEvent(EventStatsUpdated, search.Stats{TotalSystems: 1})
	b.PublishCatalogEvent(EventStatsUpdated, search.Stats{TotalSystems: 2})
	b.Close()

	got := drain(t, ch, 50*time.Millisecond)
	if len(got) != 1 || statsFrame(t, got[0]).TotalSystems != 1 {
		t.Errorf("frames after close = %+v", got)
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after close = %d", n)
	}

	// No-ops after close.
	b.PublishCatalogEvent(EventSyncFailed, map[string]string{"error": "x"})
	b.Close()
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}
}
