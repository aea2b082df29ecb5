package domain

import "context"

const (
	AuthStorageKey = "isLoggedIn"
	AuthSentinel   = "1"
)

// AuthState is the read-mostly handle shared with every consumer of the
// logged-in flag. The flag only changes through Login and Logout.
type AuthState interface {
	IsLoggedIn() bool
	Login(ctx context.Context, email, password string)
	Logout(ctx context.Context)
}

type AuthStateChanged struct {
	LoggedIn bool `json:"logged_in"`
}
