// Package clock re-renders the countdown at the top of every minute.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
)

// Clock calls a tick function on a cron schedule while it is running.
type Clock struct {
	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// Option configures a Clock.
type Option func(*options)

type options struct {
	spec     string
	location *time.Location
}

// WithSpec overrides the schedule. The spec has a leading seconds field.
func WithSpec(spec string) Option {
	return func(o *options) { o.spec = spec }
}

// WithLocation sets the time zone the schedule is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// New returns a stopped clock that calls tick with the firing time.
func New(tick func(now time.Time), opts ...Option) (*Clock, error) {
	o := options{spec: constants.ClockSpec, location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(o.location))
	if _, err := c.AddFunc(o.spec, func() {
		now := time.Now().In(o.location)
		log.Trace("clock tick", "now", now.Format(time.RFC3339))
		tick(now)
	}); err != nil {
		return nil, fmt.Errorf("invalid clock schedule %q: %w", o.spec, err)
	}

	return &Clock{cron: c}, nil
}

// Start begins ticking. Starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.cron.Start()
	c.running = true
	log.Debug("clock started")
}

// Stop halts ticking and waits for a running tick to finish. Stopping a
// stopped clock does nothing.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	done := c.cron.Stop()
	c.mu.Unlock()

	<-done.Done()
	log.Debug("clock stopped")
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Sync starts or stops the clock to match ticking.
func (c *Clock) Sync(ticking bool) {
	if ticking {
		c.Start()
	} else {
		c.Stop()
	}
}
