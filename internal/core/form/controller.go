// Package form implements the login form controller: two fields, blur-time
// validation and a debounced whole-form check.
package form

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"authform/internal/core/debounce"
	"authform/internal/domain"
	"authform/internal/logger"
)

const DefaultDebounceWindow = 500 * time.Millisecond

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithDebounceWindow(window time.Duration) Option {
	return func(c *Controller) {
		if window > 0 {
			c.window = window
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.log = log }
}

type request struct {
	apply func(ctx context.Context)
	done  chan struct{}
}

// Controller owns the form state. Every mutation runs on the goroutine that
// called Run; the exported methods block until their event has been handled.
type Controller struct {
	auth     domain.AuthState
	renderer domain.FormRenderer
	log      logger.Logger
	clock    clockwork.Clock
	window   time.Duration

	email       *Field
	password    *Field
	formIsValid bool

	debounce *debounce.Debouncer
	events   chan request
	settled  chan struct{}

	closed    chan struct{}
	closeOnce sync.Once

	view atomic.Pointer[domain.FormView]
}

func New(auth domain.AuthState, renderer domain.FormRenderer, opts ...Option) *Controller {
	c := &Controller{
		auth:     auth,
		renderer: renderer,
		log:      logger.NewNop(),
		clock:    clockwork.NewRealClock(),
		window:   DefaultDebounceWindow,

		events:  make(chan request),
		settled: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.email = newField(domain.FieldEmail, renderer)
	c.password = newField(domain.FieldPassword, renderer)
	c.debounce = debounce.New(c.clock, c.window, func() {
		select {
		case c.settled <- struct{}{}:
		default:
		}
	})

	v := c.buildView()
	c.view.Store(&v)

	return c
}

// Run processes events until ctx is done or Close is called. A pending
// validity check is dropped on return.
func (c *Controller) Run(ctx context.Context) error {
	defer c.Close()

	c.render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.closed:
			return nil

		case req := <-c.events:
			req.apply(ctx)
			c.render()
			close(req.done)

		case <-c.settled:
			// select picks at random when both are ready.
			if c.isClosed() {
				return nil
			}
			c.recompute()
			c.render()
		}
	}
}

func (c *Controller) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Close tears the controller down. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.debounce.Stop()
		close(c.closed)
	})
}

// Change stores the new value and re-arms the debounce timer.
func (c *Controller) Change(name domain.FieldName, value string) error {
	f, err := c.field(name)
	if err != nil {
		return err
	}

	return c.do(func(context.Context) {
		f.change(value)
		c.debounce.Trigger()
	})
}

// Blur validates a single field right away.
func (c *Controller) Blur(name domain.FieldName) error {
	f, err := c.field(name)
	if err != nil {
		return err
	}

	return c.do(func(context.Context) {
		f.resolve()
	})
}

// Submit hands both raw values to the auth state whatever the form validity
// is; the disabled submit control is the only gate.
func (c *Controller) Submit() error {
	return c.do(func(ctx context.Context) {
		c.auth.Login(ctx, c.email.state.Value, c.password.state.Value)
	})
}

// FocusFirstInvalid focuses the first field that is not Valid, email first.
func (c *Controller) FocusFirstInvalid() (bool, error) {
	var focused bool

	err := c.do(func(context.Context) {
		for _, f := range []*Field{c.email, c.password} {
			if f.state.Validity != domain.Valid {
				f.Focus()
				focused = true
				return
			}
		}
	})

	return focused, err
}

// Field returns the focus handle of the named input, or nil.
func (c *Controller) Field(name domain.FieldName) domain.Focuser {
	f, err := c.field(name)
	if err != nil {
		return nil
	}
	return f
}

// Snapshot returns the most recently rendered view.
func (c *Controller) Snapshot() domain.FormView {
	return *c.view.Load()
}

func (c *Controller) do(apply func(ctx context.Context)) error {
	req := request{apply: apply, done: make(chan struct{})}

	select {
	case c.events <- req:
	case <-c.closed:
		return domain.ErrControllerClosed
	}

	<-req.done
	return nil
}

func (c *Controller) field(name domain.FieldName) (*Field, error) {
	switch name {
	case domain.FieldEmail:
		return c.email, nil
	case domain.FieldPassword:
		return c.password, nil
	default:
		return nil, domain.ErrUnknownField
	}
}

func (c *Controller) recompute() {
	c.log.Debug("form: checking validity")

	for _, f := range []*Field{c.email, c.password} {
		if f.dirty {
			f.resolve()
		}
	}

	c.formIsValid = c.email.state.Validity == domain.Valid &&
		c.password.state.Validity == domain.Valid
}

func (c *Controller) buildView() domain.FormView {
	return domain.FormView{
		Email:       c.email.state,
		Password:    c.password.state,
		FormIsValid: c.formIsValid,
	}
}

func (c *Controller) render() {
	v := c.buildView()
	c.view.Store(&v)
	c.renderer.Render(v)
}
