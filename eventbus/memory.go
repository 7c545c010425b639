package eventbus

import (
	"context"
	"sync"
)

// Memory is the in-process Bus: events are enqueued to an unbounded,
// growable queue and drained by a single worker goroutine, so delivery
// order matches dispatch order for any given key (in fact, globally) and a
// slow handler never blocks Dispatch.
type Memory struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool

	handlersMu sync.RWMutex
	handlers   []func(Event)
}

// NewMemory starts the draining worker and returns a ready Memory bus.
func NewMemory() *Memory {
	m := &Memory{}
	m.cond = sync.NewCond(&m.mu)
	go m.loop()
	return m
}

// Dispatch enqueues evt and returns immediately.
func (m *Memory) Dispatch(_ context.Context, evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.queue = append(m.queue, evt)
	m.cond.Signal()
}

// Subscribe registers handler for every dispatched event. The returned
// function unsubscribes it.
func (m *Memory) Subscribe(handler func(Event)) func() {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()

	m.handlers = append(m.handlers, handler)
	idx := len(m.handlers) - 1

	return func() {
		m.handlersMu.Lock()
		defer m.handlersMu.Unlock()
		if idx < len(m.handlers) {
			m.handlers[idx] = nil
		}
	}
}

// Close stops the draining worker once the queue is empty. Further
// Dispatch calls are silently dropped.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
	return nil
}

func (m *Memory) loop() {
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.queue) == 0 && m.closed {
			m.mu.Unlock()
			return
		}
		evt := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		m.deliver(evt)
	}
}

func (m *Memory) deliver(evt Event) {
	m.handlersMu.RLock()
	handlers := make([]func(Event), len(m.handlers))
	copy(handlers, m.handlers)
	m.handlersMu.RUnlock()

	for _, h := range handlers {
		if h == nil {
			continue
		}
		safeCall(h, evt)
	}
}

func safeCall(h func(Event), evt Event) {
	defer func() { _ = recover() }()
	h(evt)
}

var _ Bus = (*Memory)(nil)
