package application

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/auth/ports"
)

// Events is a synchronous fan-out of session events. Observers run on the
// publishing goroutine, outside the registry lock.
type Events struct {
	mu        sync.RWMutex
	next      int
	observers map[int]ports.SessionObserver
	now       func() time.Time
}

func NewEvents() *Events {
	return &Events{observers: map[int]ports.SessionObserver{}, now: time.Now}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn ports.SessionObserver) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.next
	e.next++
	e.observers[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.observers, id)
			e.mu.Unlock()
		})
	}
}

// Publish delivers an event of kind to every observer in subscription order.
func (e *Events) Publish(ctx context.Context, kind domain.SessionEventKind) {
	event := domain.SessionEvent{Kind: kind, At: e.now()}
	e.mu.RLock()
	ids := make([]int, 0, len(e.observers))
	observers := make(map[int]ports.SessionObserver, len(e.observers))
	for id, fn := range e.observers {
		ids = append(ids, id)
		observers[id] = fn
	}
	e.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		observers[id](ctx, event)
	}
}
