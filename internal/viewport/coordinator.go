// Package viewport implements the client-side query coordination contract
// for map views: viewport changes are debounced into bounds queries, the
// previous result stays visible while a query is in flight, and late
// responses never overwrite results of queries issued after them.
package viewport

import (
	"context"
	"sync"
	"time"

	"github.com/NINESTRING/my-place/internal/geo"
	"github.com/NINESTRING/my-place/internal/store"
)

// DefaultDebounce is the delay between the last viewport change and the
// query it triggers.
const DefaultDebounce = time.Second

// State describes what the coordinator is doing.
type State int

const (
	// StateIdle means no query has been issued yet.
	StateIdle State = iota
	// StatePending means a query is in flight.
	StatePending
	// StateDisplaying means the last good result is on screen.
	StateDisplaying
)

// View is the map camera position persisted between sessions.
type View struct {
	Center geo.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
}

// Session is the state a returning client resumes from.
type Session struct {
	View   View        `json:"view"`
	Bounds *geo.Bounds `json:"bounds,omitempty"`
}

// QueryFunc issues a bounds query against the place service.
type QueryFunc func(ctx context.Context, bounds geo.Bounds) ([]store.Place, error)

// Coordinator debounces viewport changes into bounds queries and applies
// responses in issuance order.
type Coordinator struct {
	query    QueryFunc
	debounce time.Duration
	sessions StateStore
	onSettle func()

	mu        sync.Mutex
	timer     *time.Timer
	session   Session
	issued    uint64
	applied   uint64
	inFlight  int
	places    []store.Place
	hasResult bool
	closed    bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// WithSessionStore persists the viewport and last bounds across restarts.
func WithSessionStore(s StateStore) Option {
	return func(c *Coordinator) { c.sessions = s }
}

// WithSettleFunc registers a callback invoked after every query resolution,
// applied or discarded.
func WithSettleFunc(f func()) Option {
	return func(c *Coordinator) { c.onSettle = f }
}

// New builds a Coordinator around the given query function. When a session
// store holds a previous session, its bounds are queued for querying so the
// returning client resumes its last view without waiting for geolocation.
func New(query QueryFunc, opts ...Option) *Coordinator {
	c := &Coordinator{query: query, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}

	if c.sessions != nil {
		if session, err := c.sessions.Load(); err == nil {
			c.mu.Lock()
			c.session = session
			if session.Bounds != nil {
				c.scheduleLocked()
			}
			c.mu.Unlock()
		}
	}
	return c
}

// SetViewport records a viewport change. The debounce timer restarts on
// every call; only the bounds of the final change are queried.
func (c *Coordinator) SetViewport(view View, bounds geo.Bounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	b := bounds
	c.session = Session{View: view, Bounds: &b}
	if c.sessions != nil {
		_ = c.sessions.Save(c.session)
	}

	c.scheduleLocked()
}

func (c *Coordinator) scheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

// fire issues the query for the bounds current at debounce expiry.
func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed || c.session.Bounds == nil {
		c.mu.Unlock()
		return
	}
	c.issued++
	seq := c.issued
	bounds := *c.session.Bounds
	c.inFlight++
	c.mu.Unlock()

	go c.run(seq, bounds)
}

func (c *Coordinator) run(seq uint64, bounds geo.Bounds) {
	places, err := c.query(context.Background(), bounds)

	c.mu.Lock()
	c.inFlight--
	// Late responses lose to anything issued after them, regardless of
	// arrival order.
	if err == nil && seq > c.applied {
		c.applied = seq
		c.places = places
		c.hasResult = true
	}
	settle := c.onSettle
	c.mu.Unlock()

	if settle != nil {
		settle()
	}
}

// Snapshot reports the coordinator state and the places currently on
// display. While a query is pending the previous result remains visible;
// the display only ever blanks when no result has arrived yet.
func (c *Coordinator) Snapshot() (State, []store.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()

	places := make([]store.Place, len(c.places))
	copy(places, c.places)

	switch {
	case c.inFlight > 0:
		return StatePending, places
	case c.hasResult:
		return StateDisplaying, places
	default:
		return StateIdle, places
	}
}

// Session returns the persisted view and bounds.
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Close stops the debounce timer. In-flight queries are not cancelled;
// their results are discarded on arrival.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
}
