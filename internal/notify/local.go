package notify

import (
	"context"
	"sync"
)

// Local is an in-process change-notification fan-out used when the app and
// the backend stand-in share a process. Listeners run on their own
// goroutines so a publisher is never blocked by a slow reload.
type Local struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]func()
}

func NewLocal() *Local {
	return &Local{listeners: make(map[string]map[int]func())}
}

func (n *Local) Subscribe(ctx context.Context, table string, fn func()) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listeners[table] == nil {
		n.listeners[table] = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.listeners[table][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners[table], id)
	}, nil
}

func (n *Local) Publish(ctx context.Context, table string) error {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners[table]))
	for _, fn := range n.listeners[table] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		go fn()
	}
	return nil
}
