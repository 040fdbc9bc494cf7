// Package realtime provides change feeds that deliver remote.Change values to
// every subscriber of the same email: in process, over Redis pub/sub, or over
// a Kafka topic.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/remote"
)

// Memory is an in-process feed. Delivery is synchronous, in publish order.
type Memory struct {
	mu        sync.RWMutex
	subs      map[string]map[uint64]func(remote.Change)
	next      uint64
	logger    *slog.Logger
	published []remote.Change
}

func NewMemory(logger *slog.Logger) *Memory {
	return &Memory{
		subs:   make(map[string]map[uint64]func(remote.Change)),
		logger: logger.With("feed", "memory"),
	}
}

func (m *Memory) Publish(_ context.Context, ch remote.Change) error {
	email := domain.NormalizeEmail(ch.Email)
	m.mu.Lock()
	m.published = append(m.published, ch)
	handlers := make([]func(remote.Change), 0, len(m.subs[email]))
	for _, fn := range m.subs[email] {
		handlers = append(handlers, fn)
	}
	m.mu.Unlock()

	for _, fn := range handlers {
		m.deliver(fn, ch)
	}
	return nil
}

func (m *Memory) deliver(fn func(remote.Change), ch remote.Change) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered in change handler", "email", ch.Email, "panic", r)
		}
	}()
	fn(ch)
}

func (m *Memory) Subscribe(_ context.Context, email string, fn func(remote.Change)) (func(), error) {
	email = domain.NormalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	if m.subs[email] == nil {
		m.subs[email] = make(map[uint64]func(remote.Change))
	}
	m.subs[email][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[email], id)
			if len(m.subs[email]) == 0 {
				delete(m.subs, email)
			}
		})
	}, nil
}

// Subscribers returns the number of live subscriptions for email.
func (m *Memory) Subscribers(email string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[domain.NormalizeEmail(email)])
}

// Published returns every change published so far. This is useful for testing.
func (m *Memory) Published() []remote.Change {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]remote.Change(nil), m.published...)
}

var _ remote.Feed = (*Memory)(nil)
