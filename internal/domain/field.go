// Package domain
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownValidity  = errors.New("unknown validity")
	ErrControllerClosed = errors.New("form controller closed")
)

type FieldName string

const (
	FieldEmail    FieldName = "email"
	FieldPassword FieldName = "password"
)

func (n FieldName) Valid() bool {
	return n == FieldEmail || n == FieldPassword
}

// Validity is tri-state: Unknown means the field has not been checked yet.
type Validity int

const (
	Unknown Validity = iota
	Valid
	Invalid
)

func ValidityOf(ok bool) Validity {
	if ok {
		return Valid
	}
	return Invalid
}

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func (v Validity) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Validity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "unknown", "":
		*v = Unknown
	case "valid":
		*v = Valid
	case "invalid":
		*v = Invalid
	default:
		return fmt.Errorf("%w: %q", ErrUnknownValidity, s)
	}

	return nil
}

type FieldState struct {
	Value    string   `json:"value"`
	Validity Validity `json:"validity"`
}

// FormView is what the controller hands to its renderer after every event.
type FormView struct {
	Email       FieldState `json:"email"`
	Password    FieldState `json:"password"`
	FormIsValid bool       `json:"form_is_valid"`
}

// Focuser is the only capability a field unit exposes to its owner.
type Focuser interface {
	Focus()
}

type FormRenderer interface {
	Render(view FormView)
	Focus(field FieldName)
}
