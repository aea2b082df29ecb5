package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"

	"authform/internal/config"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF issues a double-submit cookie on safe methods. Unsafe methods must echo
// the cookie value in CSRFHeaderName.
func CSRF(cfg *config.Config) Middleware {
	maxAge := int(cfg.CSRFTokenTTL.Seconds())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CSRFCookieName)

			if isSafeMethod(r.Method) {
				if err != nil || cookie.Value == "" {
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookieName,
						Value:    rand.Text(),
						Path:     "/",
						MaxAge:   maxAge,
						Secure:   cfg.SecureCookies,
						SameSite: http.SameSiteStrictMode,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			if err != nil || cookie.Value == "" {
				http.Error(w, "missing csrf cookie", http.StatusForbidden)
				return
			}

			token := r.Header.Get(CSRFHeaderName)
			if token == "" {
				http.Error(w, "missing csrf token", http.StatusForbidden)
				return
			}

			if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(token)) != 1 {
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
