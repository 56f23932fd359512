package publisher

import (
	"context"
	"sync"

	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/segmentio/kafka-go"
)

type mockOutbox struct {
	mu        sync.Mutex
	events    []*d.OutboxEvent
	fetchErr  error
	markErr   error
	processed []string
}

func (m *mockOutbox) GetUnprocessedEvents(_ context.Context, limit int) ([]*d.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	done := make(map[string]bool, len(m.processed))
	for _, id := range m.processed {
		done[id] = true
	}
	var out []*d.OutboxEvent
	for _, e := range m.events {
		if !done[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) MarkEventAsProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.processed = append(m.processed, id)
	return nil
}

func (m *mockOutbox) processedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.processed...)
}

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	calls    int
	closed   bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}
