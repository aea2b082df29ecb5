// Package event
package event

import (
	"reflect"
	"sync"

	"authform/internal/logger"
)

type Handler func(event any)

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[reflect.Type][]subscription
	log      logger.Logger
}

func New(log logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]subscription),
		log:      log,
	}
}

// Subscribe registers handler for events of the same dynamic type as event.
// The returned func removes the subscription and is safe to call twice.
func (b *Bus) Subscribe(event any, handler Handler) (unsubscribe func()) {
	t := reflect.TypeOf(event)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.handlers[t]) == 0 {
			delete(b.handlers, t)
		}
	}
}

func (b *Bus) Publish(event any) {
	t := reflect.TypeOf(event)

	b.mu.RLock()
	subs := b.handlers[t]
	b.mu.RUnlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Warn(
						"event handler panic",
						"event", t.String(),
						"panic", r,
					)
				}
			}()
			s.handler(event)
		}()
	}
}
