// Package auth holds the process-wide logged-in flag and mirrors it into a
// key-value store.
package auth

import (
	"context"
	"sync"

	"authform/internal/core/event"
	"authform/internal/domain"
	"authform/internal/logger"
)

type Store struct {
	// writeMu serializes a storage write with the flag flip that follows it.
	writeMu sync.Mutex

	mu       sync.RWMutex
	loggedIn bool

	kv  domain.KVStore
	bus *event.Bus
	log logger.Logger
}

var _ domain.AuthState = (*Store)(nil)

func NewStore(kv domain.KVStore, bus *event.Bus, log logger.Logger) *Store {
	return &Store{
		kv:  kv,
		bus: bus,
		log: log,
	}
}

// Restore seeds the flag from storage. It is meant to run once at startup.
func (s *Store) Restore(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	value, ok, err := s.kv.Get(ctx, domain.AuthStorageKey)
	if err != nil {
		s.log.Error("auth: failed to read stored state", "key", domain.AuthStorageKey, "error", err)
		return
	}

	if !ok || value != domain.AuthSentinel {
		s.log.Debug("auth: no stored session")
		return
	}

	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()

	s.log.Info("auth: restored logged in state")
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loggedIn
}

// Login accepts any credentials.
func (s *Store) Login(ctx context.Context, email, password string) {
	s.writeMu.Lock()
	if err := s.kv.Set(ctx, domain.AuthStorageKey, domain.AuthSentinel); err != nil {
		s.log.Error("auth: failed to persist login", "error", err)
	}
	s.set(true)
	s.writeMu.Unlock()

	s.publish(true)
	s.log.Info("auth: logged in", "email", email)
}

func (s *Store) Logout(ctx context.Context) {
	s.writeMu.Lock()
	if err := s.kv.Delete(ctx, domain.AuthStorageKey); err != nil {
		s.log.Error("auth: failed to clear stored login", "error", err)
	}
	s.set(false)
	s.writeMu.Unlock()

	s.publish(false)
	s.log.Info("auth: logged out")
}

func (s *Store) set(loggedIn bool) {
	s.mu.Lock()
	s.loggedIn = loggedIn
	s.mu.Unlock()
}

// publish runs outside writeMu so subscribers may call back into the store.
func (s *Store) publish(loggedIn bool) {
	if s.bus != nil {
		s.bus.Publish(domain.AuthStateChanged{LoggedIn: loggedIn})
	}
}
