// Package lifecycle tracks the logical running state of a service process.
//
// A Controller is created once at startup. Its Generation is the Process
// Generation used by the token Guard. Stop either pauses the service
// (requests other than health and control get 503) or, for services built
// with WithShutdownOnStop, asks the run loop to shut the process down.
package lifecycle

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/flappyv/platform/internal/core/domain"
)

type Controller struct {
	name           string
	generation     time.Time
	now            func() time.Time
	shutdownOnStop bool

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
}

type Option func(*Controller)

// WithShutdownOnStop makes Stop request a process shutdown.
func WithShutdownOnStop() Option {
	return func(c *Controller) { c.shutdownOnStop = true }
}

// WithClock overrides the clock used for the generation and uptime.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(name string, opts ...Option) *Controller {
	c := &Controller{name: name, now: time.Now, stopCh: make(chan struct{})}
	for _, opt := range opts {
		opt(c)
	}
	c.generation = c.now()
	c.running.Store(true)
	return c
}

func (c *Controller) Name() string { return c.name }

// Generation is captured once in New and never changes.
func (c *Controller) Generation() time.Time { return c.generation }

func (c *Controller) Running() bool { return c.running.Load() }

func (c *Controller) ShutdownOnStop() bool { return c.shutdownOnStop }

func (c *Controller) Uptime() time.Duration { return c.now().Sub(c.generation) }

func (c *Controller) Status() domain.ServiceStatus {
	return domain.ServiceStatus{
		Running:    c.Running(),
		Service:    c.name,
		Uptime:     c.Uptime().Seconds(),
		Generation: c.generation,
	}
}

// Start resumes a paused service. It reports whether the state changed.
func (c *Controller) Start() bool {
	return c.running.CompareAndSwap(false, true)
}

// Stop marks the service stopped and, with WithShutdownOnStop, closes
// StopRequested. It reports whether the state changed.
func (c *Controller) Stop() bool {
	changed := c.running.CompareAndSwap(true, false)
	if c.shutdownOnStop {
		c.stopOnce.Do(func() { close(c.stopCh) })
	}
	return changed
}

// StopRequested is closed once a shutdown has been requested through Stop.
func (c *Controller) StopRequested() <-chan struct{} { return c.stopCh }
