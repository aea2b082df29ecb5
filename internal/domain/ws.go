package domain

import "encoding/json"

const (
	WsClientChange       = "change"
	WsClientBlur         = "blur"
	WsClientSubmit       = "submit"
	WsClientFocusInvalid = "focus_invalid"
	WsClientLogout       = "logout"
)

const (
	WsEventForm  = "form"
	WsEventFocus = "focus"
	WsEventAuth  = "auth"
	WsEventError = "error"
)

type WsClientMessage struct {
	Type  string    `json:"type" validate:"required,oneof=change blur submit focus_invalid logout"`
	Field FieldName `json:"field,omitempty" validate:"required_if=Type change,required_if=Type blur,eq=|oneof=email password"`
	Value string    `json:"value,omitempty"`
}

type WsServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// WsInboundMessage mirrors WsServerMessage on the receiving side.
type WsInboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WsFocusPayload struct {
	Field FieldName `json:"field"`
}

type WsErrorPayload struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
