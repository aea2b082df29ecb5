package subscribers

import (
	"authform/internal/adapters/ws/formws"
	"authform/internal/domain"
)

type AuthStateChanged struct {
	hub *formws.Hub
}

func NewAuthStateChanged(hub *formws.Hub) *AuthStateChanged {
	return &AuthStateChanged{hub: hub}
}

func (s *AuthStateChanged) Handle(event any) {
	evt, ok := event.(domain.AuthStateChanged)
	if !ok {
		return
	}

	s.hub.Broadcast(&domain.WsServerMessage{
		Type:    domain.WsEventAuth,
		Payload: evt,
	})
}
