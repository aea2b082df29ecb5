package http

import (
	"net/http"

	"authform/internal/domain"
)

type AuthHandler struct {
	auth domain.AuthState
}

func NewAuthHandler(auth domain.AuthState) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	JSONSuccess(w, http.StatusOK, APIResponse{
		Data: domain.AuthStateChanged{LoggedIn: h.auth.IsLoggedIn()},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())

	JSONSuccess(w, http.StatusOK, APIResponse{
		Message: "logged out",
		Data:    domain.AuthStateChanged{LoggedIn: false},
	})
}
