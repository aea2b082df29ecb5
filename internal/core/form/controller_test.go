package form

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authform/internal/adapters/memory"
	"authform/internal/core/auth"
	"authform/internal/core/event"
	"authform/internal/domain"
	"authform/internal/logger"
)

const (
	window  = 500 * time.Millisecond
	waitFor = time.Second
	tick    = 5 * time.Millisecond
	quiet   = 50 * time.Millisecond
)

type recordingRenderer struct {
	mu      sync.Mutex
	renders int
	focused []domain.FieldName
}

func (r *recordingRenderer) Render(domain.FormView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
}

func (r *recordingRenderer) Focus(field domain.FieldName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focused = append(r.focused, field)
}

func (r *recordingRenderer) Focused() []domain.FieldName {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FieldName(nil), r.focused...)
}

type loginCall struct {
	email    string
	password string
}

type fakeAuth struct {
	mu     sync.Mutex
	logins []loginCall
}

func (a *fakeAuth) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.logins) > 0
}

func (a *fakeAuth) Login(_ context.Context, email, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins = append(a.logins, loginCall{email, password})
}

func (a *fakeAuth) Logout(context.Context) {}

func (a *fakeAuth) Logins() []loginCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]loginCall(nil), a.logins...)
}

type harness struct {
	ctrl     *Controller
	clock    *clockwork.FakeClock
	renderer *recordingRenderer
}

func start(t *testing.T, authState domain.AuthState) *harness {
	t.Helper()

	h := &harness{
		clock:    clockwork.NewFakeClock(),
		renderer: &recordingRenderer{},
	}
	h.ctrl = New(authState, h.renderer, WithClock(h.clock), WithDebounceWindow(window))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ctrl.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return h
}

func (h *harness) formIsValid() bool { return h.ctrl.Snapshot().FormIsValid }

func TestChangeKeepsValidityUntilBlur(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "abc"))
	view := h.ctrl.Snapshot()
	assert.Equal(t, "abc", view.Email.Value)
	assert.Equal(t, domain.Unknown, view.Email.Validity)

	require.NoError(t, h.ctrl.Blur(domain.FieldEmail))
	assert.Equal(t, domain.Invalid, h.ctrl.Snapshot().Email.Validity)

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "abc@d"))
	assert.Equal(t, domain.Invalid, h.ctrl.Snapshot().Email.Validity)

	require.NoError(t, h.ctrl.Blur(domain.FieldEmail))
	assert.Equal(t, domain.Valid, h.ctrl.Snapshot().Email.Validity)
	assert.False(t, h.formIsValid(), "blur alone must not recompute the form")
}

func TestDebouncedFormValidity(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret123"))

	h.clock.Advance(window - time.Millisecond)
	assert.Never(t, h.formIsValid, quiet, tick)

	h.clock.Advance(time.Millisecond)
	assert.Eventually(t, h.formIsValid, waitFor, tick)

	view := h.ctrl.Snapshot()
	assert.Equal(t, domain.Valid, view.Email.Validity)
	assert.Equal(t, domain.Valid, view.Password.Validity)
}

func TestKeystrokesPostponeRecompute(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret1"))
	h.clock.Advance(400 * time.Millisecond)

	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret12"))
	h.clock.Advance(400 * time.Millisecond)
	assert.Never(t, h.formIsValid, quiet, tick)
	assert.Equal(t, domain.Unknown, h.ctrl.Snapshot().Password.Validity)

	h.clock.Advance(100 * time.Millisecond)
	assert.Eventually(t, h.formIsValid, waitFor, tick)
}

func TestFormValidityIsConjunction(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "short"))
	h.clock.Advance(window)

	assert.Eventually(t, func() bool {
		return h.ctrl.Snapshot().Password.Validity == domain.Invalid
	}, waitFor, tick)
	assert.False(t, h.formIsValid())

	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "long enough"))
	h.clock.Advance(window)
	assert.Eventually(t, h.formIsValid, waitFor, tick)

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "nope"))
	h.clock.Advance(window)
	assert.Eventually(t, func() bool { return !h.formIsValid() }, waitFor, tick)
}

func TestUntouchedFieldStaysUnknown(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	h.clock.Advance(window)

	assert.Eventually(t, func() bool {
		return h.ctrl.Snapshot().Email.Validity == domain.Valid
	}, waitFor, tick)
	assert.Equal(t, domain.Unknown, h.ctrl.Snapshot().Password.Validity)
	assert.False(t, h.formIsValid())
}

func TestPasswordValueIsNotTrimmed(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "  secret1  "))
	require.NoError(t, h.ctrl.Blur(domain.FieldPassword))

	view := h.ctrl.Snapshot()
	assert.Equal(t, "  secret1  ", view.Password.Value)
	assert.Equal(t, domain.Valid, view.Password.Validity)
}

func TestCloseCancelsPendingRecompute(t *testing.T) {
	h := start(t, &fakeAuth{})

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret123"))

	h.ctrl.Close()
	h.clock.Advance(2 * window)

	assert.Never(t, h.formIsValid, quiet, tick)
	assert.ErrorIs(t, h.ctrl.Change(domain.FieldEmail, "x"), domain.ErrControllerClosed)
	assert.ErrorIs(t, h.ctrl.Submit(), domain.ErrControllerClosed)
}

func TestBufferedFireAfterCloseIsDropped(t *testing.T) {
	for range 50 {
		ctrl := New(&fakeAuth{}, &recordingRenderer{}, WithClock(clockwork.NewFakeClock()))
		ctrl.email.change("a@b.com")
		ctrl.password.change("secret123")
		ctrl.settled <- struct{}{}
		ctrl.Close()

		require.NoError(t, ctrl.Run(context.Background()))
		assert.False(t, ctrl.Snapshot().FormIsValid)
		assert.Equal(t, domain.Unknown, ctrl.Snapshot().Email.Validity)
	}
}

func TestContextCancelStopsRun(t *testing.T) {
	ctrl := New(&fakeAuth{}, &recordingRenderer{}, WithClock(clockwork.NewFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, ctrl.Run(ctx), context.Canceled)
	assert.ErrorIs(t, ctrl.Blur(domain.FieldEmail), domain.ErrControllerClosed)
}

func TestSubmitForwardsRawValuesRegardlessOfValidity(t *testing.T) {
	a := &fakeAuth{}
	h := start(t, a)

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "nope"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, " x "))
	require.NoError(t, h.ctrl.Submit())

	assert.Equal(t, []loginCall{{"nope", " x "}}, a.Logins())
}

func TestUnknownField(t *testing.T) {
	h := start(t, &fakeAuth{})

	assert.ErrorIs(t, h.ctrl.Change("username", "x"), domain.ErrUnknownField)
	assert.ErrorIs(t, h.ctrl.Blur("username"), domain.ErrUnknownField)
	assert.Nil(t, h.ctrl.Field("username"))
}

func TestFocus(t *testing.T) {
	h := start(t, &fakeAuth{})

	h.ctrl.Field(domain.FieldPassword).Focus()
	assert.Equal(t, []domain.FieldName{domain.FieldPassword}, h.renderer.Focused())

	focused, err := h.ctrl.FocusFirstInvalid()
	require.NoError(t, err)
	assert.True(t, focused)
	assert.Equal(t, domain.FieldEmail, h.renderer.Focused()[1])

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Blur(domain.FieldEmail))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "bad"))
	require.NoError(t, h.ctrl.Blur(domain.FieldPassword))

	focused, err = h.ctrl.FocusFirstInvalid()
	require.NoError(t, err)
	assert.True(t, focused)
	assert.Equal(t, domain.FieldPassword, h.renderer.Focused()[2])

	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret123"))
	require.NoError(t, h.ctrl.Blur(domain.FieldPassword))

	focused, err = h.ctrl.FocusFirstInvalid()
	require.NoError(t, err)
	assert.False(t, focused)
	assert.Len(t, h.renderer.Focused(), 3)
}

func TestLoginFlowPersistsSentinel(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	kv := memory.NewKVStore()
	store := auth.NewStore(kv, event.New(log), log)
	h := start(t, store)

	require.NoError(t, h.ctrl.Change(domain.FieldEmail, "a@b.com"))
	require.NoError(t, h.ctrl.Change(domain.FieldPassword, "secret123"))
	h.clock.Advance(window)
	require.Eventually(t, h.formIsValid, waitFor, tick)

	require.NoError(t, h.ctrl.Submit())

	assert.True(t, store.IsLoggedIn())
	v, ok, err := kv.Get(ctx, domain.AuthStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.AuthSentinel, v)
}
