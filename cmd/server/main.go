package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "authform/internal/adapters/http"
	"authform/internal/adapters/http/validator"
	"authform/internal/adapters/storage"
	"authform/internal/adapters/ws/formws"
	"authform/internal/adapters/ws/formws/subscribers"
	"authform/internal/config"
	"authform/internal/core/auth"
	"authform/internal/core/event"
	"authform/internal/core/form"
	"authform/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	appLog := logger.New(cfg)

	kv, err := storage.Open(ctx, cfg, appLog)
	if err != nil {
		appLog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		log.Fatal(err)
	}
	defer kv.Close()

	bus := event.New(appLog)

	authStore := auth.NewStore(kv, bus, appLog)
	authStore.Restore(ctx)

	hub := formws.NewHub(ctx, appLog)
	subscribers.Register(bus, hub)

	wsHandler := formws.NewHandler(
		hub, cfg, appLog, authStore, validator.New(),
		form.WithDebounceWindow(cfg.DebounceWindow),
	)

	router := httpadapter.NewRouter(cfg, &httpadapter.RouterDeps{
		Page: httpadapter.NewPageHandler(appLog),
		Auth: httpadapter.NewAuthHandler(authStore),
		Ws:   wsHandler.Serve,
	})

	srv := httpadapter.NewServer(router, cfg.Address)

	g, gCtx := errgroup.WithContext(ctx)

	// WebSocket hub
	g.Go(func() error {
		hub.Run()
		return nil
	})

	// HTTP server
	g.Go(func() error {
		appLog.Info("http: starting server", "address", cfg.Address, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		hub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http: server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLog.Error("server failed unexpectedly", "error", err)
	}

	appLog.Info("server stopped")
}
