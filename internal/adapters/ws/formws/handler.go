package formws

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"authform/internal/adapters/http/validator"
	"authform/internal/config"
	"authform/internal/core/form"
	"authform/internal/domain"
	"authform/internal/logger"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      logger.Logger

	auth      domain.AuthState
	validator validator.Validator
	formOpts  []form.Option
}

func NewHandler(
	hub *Hub,
	cfg *config.Config,
	log logger.Logger,
	auth domain.AuthState,
	v validator.Validator,
	formOpts ...form.Option,
) *Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
				return true
			}

			allowed := slices.Contains(cfg.AllowedOrigins, origin)
			if !allowed {
				log.Warn("ws origin rejected", "origin", origin)
			}

			return allowed
		},
	}

	return &Handler{
		hub:       hub,
		upgrader:  upgrader,
		log:       log,
		auth:      auth,
		validator: v,
		formOpts:  formOpts,
	}
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn, h.log, uuid.NewString(), h.auth, h.validator, h.formOpts...)

	if !h.hub.addClient(client) {
		h.log.Warn("ws: hub stopped, rejecting client")
		conn.Close()
		return
	}

	client.sendAuth(h.auth.IsLoggedIn())

	go client.writePump()
	// The request context ends with Serve; the session lives as long as the hub.
	go client.run(h.hub.ctx)

	h.log.Info("ws client connected", "id", client.ID, "remote_addr", conn.RemoteAddr())
}
