package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
)

// ErrLoginRejected is returned when the backend's response does not carry
// the success message
var ErrLoginRejected = errors.New("login rejected")

// State is the authentication state of a Controller
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Timer is the part of *time.Timer the watchdog needs
type Timer interface {
	Stop() bool
}

// TimerFunc schedules f after d, like time.AfterFunc. It must not call f
// synchronously.
type TimerFunc func(d time.Duration, f func()) Timer

func realTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Listener is notified after every state transition
type Listener func(state State, session *internal.Session)

// Controller owns the authentication state and the expiry watchdog.
// All methods are safe for concurrent use.
type Controller struct {
	store     Store
	now       func() time.Time
	afterFunc TimerFunc

	mu        sync.Mutex
	state     State
	session   *internal.Session
	timer     Timer
	gen       uint64 // bumped on every transition; stale timers compare against it
	listeners []Listener
	closed    bool
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithTimerFunc overrides how the watchdog is scheduled
func WithTimerFunc(f TimerFunc) Option {
	return func(c *Controller) {
		c.afterFunc = f
	}
}

// NewController creates an uninitialized controller over store
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		now:       time.Now,
		afterFunc: realTimer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a listener for state transitions
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the current session, or nil
func (c *Controller) Session() *internal.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Init derives the initial state from the persisted token.
// An absent or structurally invalid token is never decoded.
func (c *Controller) Init() State {
	c.mu.Lock()
	c.state = StateInitializing
	c.mu.Unlock()

	token, ok := c.store.GetToken()
	switch {
	case !ok || !IsValidTokenFormat(token):
		if ok {
			internal.LogDebug("Stored token has an invalid format, discarding")
			c.removeToken()
		}
		c.transition(StateUnauthenticated, nil)
	case IsTokenExpired(token, c.now()):
		internal.LogDebug("Stored token has expired, discarding")
		c.removeToken()
		c.transition(StateUnauthenticated, nil)
	default:
		claims, err := DecodeToken(token)
		if err != nil {
			internal.LogDebug("Stored token could not be decoded: %v", err)
			c.removeToken()
			c.transition(StateUnauthenticated, nil)
			break
		}
		c.transition(StateAuthenticated, claims.Session())
	}
	return c.State()
}

// Login accepts a login response. Anything but the success message returns
// ErrLoginRejected and leaves the state unchanged.
func (c *Controller) Login(resp *internal.Envelope[internal.AuthData]) error {
	if !resp.OK() {
		return ErrLoginRejected
	}

	session := &internal.Session{
		EmployeeID: resp.Data.EmpID.String(),
		FirstName:  resp.Data.FirstName,
		LastName:   resp.Data.LastName,
		Role:       resp.Data.Role,
	}

	if token := resp.Data.Token; token != "" {
		if err := c.store.SetToken(token); err != nil {
			return err
		}
		if claims, err := DecodeToken(token); err == nil {
			if claims.ExpiresAt != nil {
				session.ExpiresAt = claims.ExpiresAt.Unix()
			}
			if session.EmployeeID == "" {
				session.EmployeeID = claims.EmployeeID()
			}
		} else {
			internal.LogWarn("Login token could not be decoded: %v", err)
		}
	}

	c.transition(StateAuthenticated, session)
	return nil
}

// Logout clears the token and the session
func (c *Controller) Logout() {
	c.removeToken()
	c.transition(StateUnauthenticated, nil)
}

// Close disarms the watchdog. The controller keeps its state but will not
// arm another timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	c.stopTimerLocked()
}

func (c *Controller) removeToken() {
	if err := c.store.RemoveToken(); err != nil {
		internal.LogWarn("Failed to remove token: %v", err)
	}
}

func (c *Controller) transition(state State, session *internal.Session) {
	c.mu.Lock()
	notify := c.setLocked(state, session)
	c.mu.Unlock()
	notify()
}

// setLocked applies a transition and returns the listener fan-out, which the
// caller runs after releasing the lock.
func (c *Controller) setLocked(state State, session *internal.Session) func() {
	c.state = state
	c.session = session
	c.gen++
	c.stopTimerLocked()
	if state == StateAuthenticated && !c.closed {
		c.armLocked()
	}

	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	var snapshot *internal.Session
	if session != nil {
		s := *session
		snapshot = &s
	}
	return func() {
		for _, l := range listeners {
			l(state, snapshot)
		}
	}
}

// armLocked schedules logout at the session's expiry. Sessions without a
// known expiry are not watched.
func (c *Controller) armLocked() {
	if c.session == nil || c.session.ExpiresAt == 0 {
		return
	}
	delay := time.Duration(c.session.ExpiresAt*1000-c.now().UnixMilli()) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	gen := c.gen
	internal.LogDebug("Session expires in %s", delay)
	c.timer = c.afterFunc(delay, func() { c.expire(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateAuthenticated {
		c.mu.Unlock()
		return
	}
	internal.LogInfo("Session expired, signing out")
	c.removeToken()
	notify := c.setLocked(StateUnauthenticated, nil)
	c.mu.Unlock()
	notify()
}
