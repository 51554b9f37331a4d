// Package event routes domain events between services and the live feeds
// without the services knowing who listens.
package event

import (
	"context"
	"sync"

	"github.com/afandal/storeadmin/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

type listener struct {
	id int
	fn Handler
}

var (
	mu     sync.RWMutex
	nextID int
	byName = map[string][]listener{}
)

// Listen subscribes fn to name and returns a func that unsubscribes it.
func Listen(name string, fn Handler) (cancel func()) {
	mu.Lock()
	nextID++
	id := nextID
	byName[name] = append(byName[name], listener{id: id, fn: fn})
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		ls := byName[name]
		for i, l := range ls {
			if l.id == id {
				byName[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

func handlers(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Handler, len(byName[name]))
	for i, l := range byName[name] {
		out[i] = l.fn
	}
	return out
}

// Emit calls every listener of name in subscription order.
func Emit(ctx context.Context, name string, payload any) {
	for _, fn := range handlers(name) {
		fn(ctx, payload)
	}
}

// EmitAsync runs each listener on its own goroutine with ctx's values but
// not its cancellation. A panicking listener is logged and dropped.
func EmitAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, fn := range handlers(name) {
		go func(fn Handler) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithCtx(detached).Error("event: listener panicked", "event", name, "panic", r)
				}
			}()
			fn(detached, payload)
		}(fn)
	}
}
