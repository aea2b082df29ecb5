package formws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"authform/internal/adapters/http/validator"
	"authform/internal/core/form"
	"authform/internal/domain"
	"authform/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Client is one browser tab. It is also the renderer of its form controller.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	log  logger.Logger

	mu      sync.Mutex
	send    chan []byte
	sendEnd bool

	auth      domain.AuthState
	form      *form.Controller
	validator validator.Validator

	ID string
}

var _ domain.FormRenderer = (*Client)(nil)

func NewClient(
	hub *Hub,
	conn *websocket.Conn,
	log logger.Logger,
	id string,
	auth domain.AuthState,
	v validator.Validator,
	formOpts ...form.Option,
) *Client {
	c := &Client{
		hub:       hub,
		conn:      conn,
		log:       log.With("client_id", id),
		send:      make(chan []byte, sendBuffer),
		auth:      auth,
		validator: v,
		ID:        id,
	}

	opts := append([]form.Option{form.WithLogger(c.log)}, formOpts...)
	c.form = form.New(auth, c, opts...)

	return c
}

func (c *Client) Render(view domain.FormView) {
	c.write(&domain.WsServerMessage{Type: domain.WsEventForm, Payload: view})
}

func (c *Client) Focus(field domain.FieldName) {
	c.write(&domain.WsServerMessage{Type: domain.WsEventFocus, Payload: domain.WsFocusPayload{Field: field}})
}

func (c *Client) sendAuth(loggedIn bool) {
	c.write(&domain.WsServerMessage{Type: domain.WsEventAuth, Payload: domain.AuthStateChanged{LoggedIn: loggedIn}})
}

func (c *Client) sendError(message string, errs map[string]string) {
	c.write(&domain.WsServerMessage{
		Type:    domain.WsEventError,
		Payload: domain.WsErrorPayload{Message: message, Errors: errs},
	})
}

func (c *Client) write(msg *domain.WsServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("ws: failed to marshal message", "type", msg.Type, "error", err)
		return
	}

	if !c.trySend(data) {
		c.log.Warn("ws: dropping message, client send buffer full or closed", "type", msg.Type)
	}
}

func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendEnd {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sendEnd {
		c.sendEnd = true
		close(c.send)
	}
}

// run drives the form controller and the read pump until the connection or
// the hub goes away.
func (c *Client) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := c.form.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Error("ws: form controller stopped", "error", err)
		}
	}()

	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.form.Close()
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("ws: client disconnected unexpected", "error", err)
			}
			return
		}

		var msg domain.WsClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Debug("ws: invalid client message", "error", err)
			c.sendError("invalid json message", nil)
			continue
		}

		if errs := c.validator.Validate(&msg); len(errs) > 0 {
			c.sendError("invalid message", errs)
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			if errors.Is(err, domain.ErrControllerClosed) {
				return
			}
			c.log.Warn("ws: failed to handle message", "type", msg.Type, "error", err)
			c.sendError(err.Error(), nil)
		}
	}
}

func (c *Client) handle(ctx context.Context, msg domain.WsClientMessage) error {
	switch msg.Type {
	case domain.WsClientChange:
		return c.form.Change(msg.Field, msg.Value)
	case domain.WsClientBlur:
		return c.form.Blur(msg.Field)
	case domain.WsClientSubmit:
		return c.form.Submit()
	case domain.WsClientFocusInvalid:
		_, err := c.form.FocusFirstInvalid()
		return err
	case domain.WsClientLogout:
		c.auth.Logout(ctx)
		return nil
	default:
		c.log.Warn("ws: unknown client message type", "type", msg.Type)
		return nil
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
