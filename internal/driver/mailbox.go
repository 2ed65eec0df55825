package driver

import (
	"sync"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

// mailbox guarda sólo el último bundle: si el consumidor va lento, el nuevo
// pisa al anterior sin encolar.
type mailbox struct {
	mu      sync.Mutex
	b       *signal.Bundle
	dropped uint64
	notify  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) put(b *signal.Bundle) {
	m.mu.Lock()
	if m.b != nil {
		m.dropped++
	}
	m.b = b
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() *signal.Bundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.b
	m.b = nil
	return b
}

func (m *mailbox) droppedCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}
