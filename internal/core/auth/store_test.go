package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authform/internal/adapters/memory"
	"authform/internal/core/event"
	"authform/internal/domain"
	"authform/internal/logger"
)

func newTestStore(kv domain.KVStore) (*Store, *event.Bus) {
	log := logger.NewNop()
	bus := event.New(log)
	return NewStore(kv, bus, log), bus
}

func TestLoginPersistsSentinel(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	store, _ := newTestStore(kv)

	assert.False(t, store.IsLoggedIn())

	store.Login(ctx, "a@b.com", "secret123")

	assert.True(t, store.IsLoggedIn())
	v, ok, err := kv.Get(ctx, domain.AuthStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.AuthSentinel, v)
}

func TestLogoutRemovesSentinel(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	store, _ := newTestStore(kv)

	store.Login(ctx, "a@b.com", "secret123")
	store.Logout(ctx)

	assert.False(t, store.IsLoggedIn())
	_, ok, err := kv.Get(ctx, domain.AuthStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreAcrossSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()

	first, _ := newTestStore(kv)
	first.Login(ctx, "a@b.com", "secret123")

	second, _ := newTestStore(kv)
	second.Restore(ctx)
	assert.True(t, second.IsLoggedIn())

	second.Logout(ctx)

	third, _ := newTestStore(kv)
	third.Restore(ctx)
	assert.False(t, third.IsLoggedIn())
}

func TestRestoreIgnoresForeignValue(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(ctx, domain.AuthStorageKey, "0"))

	store, _ := newTestStore(kv)
	store.Restore(ctx)

	assert.False(t, store.IsLoggedIn())
}

func TestLoginNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	store, bus := newTestStore(memory.NewKVStore())

	var events []domain.AuthStateChanged
	bus.Subscribe(domain.AuthStateChanged{}, func(ev any) {
		events = append(events, ev.(domain.AuthStateChanged))
	})

	store.Login(ctx, "a@b.com", "secret123")
	store.Logout(ctx)

	assert.Equal(t, []domain.AuthStateChanged{{LoggedIn: true}, {LoggedIn: false}}, events)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("down") }
func (failingKV) Delete(context.Context, string) error      { return errors.New("down") }
func (failingKV) Close() error                              { return nil }

func TestStorageFailuresStillFlipFlag(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(failingKV{})

	store.Restore(ctx)
	assert.False(t, store.IsLoggedIn())

	store.Login(ctx, "a@b.com", "secret123")
	assert.True(t, store.IsLoggedIn())

	store.Logout(ctx)
	assert.False(t, store.IsLoggedIn())
}

// pausingKV blocks in Set after the write lands until release is closed.
type pausingKV struct {
	domain.KVStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *pausingKV) Set(ctx context.Context, key, value string) error {
	err := p.KVStore.Set(ctx, key, value)
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
	return err
}

func TestConcurrentLoginLogoutKeepsFlagInStorage(t *testing.T) {
	ctx := context.Background()
	kv := &pausingKV{
		KVStore: memory.NewKVStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store, _ := newTestStore(kv)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Login(ctx, "a@b.com", "secret123")
	}()
	<-kv.entered

	loggedOut := make(chan struct{})
	go func() {
		defer close(loggedOut)
		store.Logout(ctx)
	}()

	select {
	case <-loggedOut:
		t.Fatal("logout finished while login was still writing")
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.release)
	wg.Wait()
	<-loggedOut

	_, stored, err := kv.Get(ctx, domain.AuthStorageKey)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, store.IsLoggedIn())

	restored, _ := newTestStore(kv)
	restored.Restore(ctx)
	assert.Equal(t, store.IsLoggedIn(), restored.IsLoggedIn())
}

func TestSubscriberMayReadStore(t *testing.T) {
	ctx := context.Background()
	store, bus := newTestStore(memory.NewKVStore())

	var seen []bool
	bus.Subscribe(domain.AuthStateChanged{}, func(any) {
		seen = append(seen, store.IsLoggedIn())
	})

	store.Login(ctx, "a@b.com", "secret123")
	store.Logout(ctx)

	assert.Equal(t, []bool{true, false}, seen)
}
