package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"plant-monitor/internal/telemetry/application/events"
)

const (
	streamBuffer    = 16
	streamKeepAlive = 15 * time.Second
)

// Subscription is one connected stream client. Its channel is never closed;
// readers stop on their own request context.
type Subscription struct {
	events chan []byte
}

// Events delivers encoded ReadingsIngested payloads.
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// SSEBroker fans ingestion events out to stream clients. Delivery is
// best-effort: a client whose buffer is full misses the event.
type SSEBroker struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{subs: make(map[*Subscription]struct{})}
}

// HandleReadingsIngested is the event bus handler for committed batches.
func (b *SSEBroker) HandleReadingsIngested(_ context.Context, event events.ReadingsIngested) error {
	if b == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Sends never block, so holding the lock keeps them ordered against Unsubscribe.
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.events <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a client.
func (b *SSEBroker) Subscribe() *Subscription {
	sub := &Subscription{events: make(chan []byte, streamBuffer)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a client. Calling it twice is harmless.
func (b *SSEBroker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Clients returns the number of connected clients.
func (b *SSEBroker) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// StreamHandler serves GET /api/v1/stream as Server-Sent Events.
type StreamHandler struct {
	broker    *SSEBroker
	keepAlive time.Duration
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *SSEBroker) *StreamHandler {
	return &StreamHandler{broker: broker, keepAlive: streamKeepAlive}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	sub := h.broker.Subscribe()
	defer h.broker.Unsubscribe(sub)

	writeEvent(w, "ready", []byte("{}"))
	flusher.Flush()

	ping := time.NewTicker(h.keepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-sub.Events():
			writeEvent(w, "readings", payload)
			flusher.Flush()
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data []byte) {
	_, _ = w.Write([]byte("event: " + name + "\ndata: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
}
