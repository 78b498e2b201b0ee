package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sgmi/proddash/internal/logging"
)

// Defaults.
const (
	// DefaultMinLatency is the loading floor applied to every cycle.
	DefaultMinLatency = 1500 * time.Millisecond

	// DefaultFallbackMessage is reported when a failure carries no message.
	DefaultFallbackMessage = "failed to load data"
)

// Func loads one value. It should return promptly once ctx is done.
type Func[T any] func(ctx context.Context) (T, error)

// Listener receives the controller state after every change.
type Listener[T any] func(State[T])

// Option configures a Controller.
type Option func(*options)

type options struct {
	minLatency time.Duration
	fallback   string
	logger     zerolog.Logger
	now        func() time.Time
}

// WithMinLatency sets the loading floor. Zero disables it.
func WithMinLatency(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.minLatency = d
		}
	}
}

// WithFallbackMessage sets the message used when an error has none.
func WithFallbackMessage(msg string) Option {
	return func(o *options) {
		if msg != "" {
			o.fallback = msg
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logging.ComponentLogger(l, "fetch")
	}
}

// withClock overrides time.Now for tests.
func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Controller runs a Func and tracks its state.
//
// Listeners are invoked from the goroutine that made the change. They may
// read State but must not call Run, Retry or Close.
type Controller[T any] struct {
	fn   Func[T]
	opts options

	mu        sync.Mutex
	state     State[T]
	cancel    context.CancelFunc
	closed    bool
	deps      string
	observed  bool
	listeners []listenerEntry[T]
	nextID    int

	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64
	wg        sync.WaitGroup
}

type listenerEntry[T any] struct {
	id int
	fn Listener[T]
}

// New returns a controller for fn. The controller starts in the loading
// state; nothing runs until Run, Start or Observe is called.
func New[T any](fn Func[T], opts ...Option) *Controller[T] {
	o := options{
		minLatency: DefaultMinLatency,
		fallback:   DefaultFallbackMessage,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller[T]{
		fn:    fn,
		opts:  o,
		state: initial[T](),
	}
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run starts a new cycle and blocks until it completes or is superseded by
// a newer one. Starting a cycle cancels the context of the previous one.
// The returned state is the controller state when Run returns.
func (c *Controller[T]) Run(ctx context.Context) State[T] {
	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.state
	}
	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	token := c.state.Token + 1
	c.state = started(c.state, token)
	c.commitLocked()

	log := c.opts.logger.With().Uint64("token", token).Logger()
	log.Debug().Ctx(ctx).Msg("fetch started")

	data, err := c.execute(runCtx)

	c.mu.Lock()
	defer cancel()
	if c.closed || c.state.Token != token {
		s := c.state
		c.mu.Unlock()
		log.Debug().Ctx(ctx).Msg("discarding superseded result")
		return s
	}
	c.cancel = nil
	if err != nil {
		msg := Message(err, c.opts.fallback)
		c.state = failed(c.state, token, msg, c.opts.now())
		log.Warn().Ctx(ctx).Err(err).Msg("fetch failed")
	} else {
		c.state = succeeded(c.state, token, data, c.opts.now())
		log.Debug().Ctx(ctx).Msg("fetch succeeded")
	}
	s := c.state
	c.commitLocked()
	return s
}

// Retry re-runs the same source. It is Run under a name that matches the
// Error to Loading transition the user triggers.
func (c *Controller[T]) Retry(ctx context.Context) State[T] {
	c.opts.logger.Info().Ctx(ctx).Msg("retry requested")
	return c.Run(ctx)
}

// Start runs a cycle in the background.
func (c *Controller[T]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.Run(ctx)
	}()
}

// Observe starts a background cycle when deps differ from the previously
// observed ones, and reports whether it did. The first call always starts.
func (c *Controller[T]) Observe(ctx context.Context, deps ...any) bool {
	key := fmt.Sprintf("%#v", deps)

	c.mu.Lock()
	if c.observed && key == c.deps {
		c.mu.Unlock()
		return false
	}
	c.observed = true
	c.deps = key
	c.mu.Unlock()

	c.Start(ctx)
	return true
}

// Subscribe registers fn for state changes and returns a func removing it.
func (c *Controller[T]) Subscribe(fn Listener[T]) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listenerEntry[T]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close cancels any in-flight cycle and waits for background cycles to
// return. Results arriving after Close are never committed.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// commitLocked releases c.mu and delivers the current state to listeners.
// A delivery that lost the race to a newer one is dropped, so listeners
// never observe states out of commit order.
func (c *Controller[T]) commitLocked() {
	c.seq++
	seq := c.seq
	s := c.state
	listeners := make([]Listener[T], len(c.listeners))
	for i, l := range c.listeners {
		listeners[i] = l.fn
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	for _, l := range listeners {
		l(s)
	}
}

// execute runs the source and the latency floor together and returns once
// both are done. A source failure does not cut the floor short.
func (c *Controller[T]) execute(ctx context.Context) (T, error) {
	var (
		g    errgroup.Group
		data T
	)
	g.Go(func() error {
		v, err := c.fn(ctx)
		if err != nil {
			return err
		}
		data = v
		return nil
	})
	g.Go(func() error {
		if c.opts.minLatency <= 0 {
			return nil
		}
		timer := time.NewTimer(c.opts.minLatency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		var zero T
		return zero, err
	}
	return data, nil
}

// Message collapses err into one human-readable string. Errors exposing a
// Message() string method (such as API errors) contribute that text;
// otherwise err.Error() is used, and fallback when both are empty.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var m interface{ Message() string }
	if errors.As(err, &m) {
		if msg := m.Message(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
