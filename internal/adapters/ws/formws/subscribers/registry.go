// Package subscribers forwards domain events to websocket clients.
package subscribers

import (
	"authform/internal/adapters/ws/formws"
	"authform/internal/core/event"
	"authform/internal/domain"
)

type EventBus interface {
	Subscribe(ev any, handler event.Handler) (unsubscribe func())
}

func Register(bus EventBus, hub *formws.Hub) {
	authStateChanged := NewAuthStateChanged(hub)

	bus.Subscribe(domain.AuthStateChanged{}, authStateChanged.Handle)
}
