package http

import (
	"net/http"
	"time"

	"authform/internal/adapters/http/middleware"
	"authform/internal/config"
)

type RouterDeps struct {
	Page *PageHandler
	Auth *AuthHandler
	Ws   http.HandlerFunc
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.CORS(cfg))
	globalMw.Use(middleware.CSRF(cfg))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /{$}", deps.Page.Index)

	mux.HandleFunc("GET /api/auth", deps.Auth.State)
	mux.HandleFunc("POST /api/auth/logout", deps.Auth.Logout)

	mux.HandleFunc("GET /ws", deps.Ws)

	return globalMw.Apply(mux)
}

func NewServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
