// Package playback advances a cursor over an Event's Moments under wall
// clock ticks, a speed factor and play/pause/seek commands, handing each
// visited Moment plus its spacing snapshot to a rendering callback.
package playback

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

// State is the controller's playback state.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Command failure modes.
var (
	ErrNoEvent  = errors.New("no event loaded")
	ErrBadSpeed = errors.New("speed factor must be positive")
)

// StepFunc renders one playback step. It runs with the controller lock held,
// so a Pause that returned is guaranteed to see no further steps; the
// callback must not call back into the controller.
type StepFunc func(idx int, m game.Moment, snap spacing.Snapshot)

// Config holds playback tuning.
type Config struct {
	// FrameRate is the source capture rate in moments per second.
	FrameRate float64

	// Speed is the initial playback speed factor.
	Speed float64

	// Metrics configures the spacing snapshot computed per step.
	Metrics spacing.Config
}

// DefaultConfig returns the playback defaults: real-time over a 25 Hz
// source.
func DefaultConfig() Config {
	return Config{
		FrameRate: 25.0,
		Speed:     1.0,
		Metrics:   spacing.DefaultConfig(),
	}
}

// Controller is a mutex-guarded playback cursor over one loaded Event.
// Commands may arrive from any goroutine.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	onStep StepFunc

	event  *game.Event
	state  State
	cursor int
	speed  float64
}

// NewController builds a stopped controller with nothing loaded. onStep may
// be nil for headless (export-only) use.
func NewController(cfg Config, onStep StepFunc) *Controller {
	return &Controller{
		cfg:    cfg,
		onStep: onStep,
		state:  StateStopped,
		speed:  cfg.Speed,
	}
}

// Load installs an event and rewinds to its first moment, stopped.
func (c *Controller) Load(ev *game.Event) error {
	if ev == nil || ev.Len() == 0 {
		return ErrNoEvent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.event = ev
	c.cursor = 0
	c.state = StateStopped
	return nil
}

// Play starts or resumes playback from the current cursor.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return ErrNoEvent
	}
	c.state = StatePlaying
	return nil
}

// Pause freezes the cursor. Once Pause returns, no step callback will fire
// until the next Play.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePlaying {
		c.state = StatePaused
	}
}

// Stop halts playback and rewinds to the first moment.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateStopped
	c.cursor = 0
}

// Seek jumps the cursor without changing state, clamping the index to the
// event's range. Works while paused or stopped, so scrubbing does not force
// playback.
func (c *Controller) Seek(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return ErrNoEvent
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= c.event.Len() {
		idx = c.event.Len() - 1
	}
	c.cursor = idx
	return nil
}

// SetSpeed changes the playback speed factor for subsequent ticks.
func (c *Controller) SetSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: %v", ErrBadSpeed, speed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	return nil
}

// Tick advances the cursor by the number of source frames the elapsed wall
// time covers at the current speed, wrapping past the end of the event, and
// invokes the step callback on the landing moment. Ticks while not playing
// are ignored. Returns the cursor after the tick.
func (c *Controller) Tick(elapsed time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return 0, ErrNoEvent
	}
	if c.state != StatePlaying {
		return c.cursor, nil
	}

	advance := int(math.Round(elapsed.Seconds() * c.cfg.FrameRate * c.speed))
	c.cursor = ((c.cursor+advance)%c.event.Len() + c.event.Len()) % c.event.Len()

	if c.onStep != nil {
		m := c.event.Moment(c.cursor)
		c.onStep(c.cursor, m, spacing.Compute(m, c.event.OffensiveSide, c.cfg.Metrics))
	}
	return c.cursor, nil
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cursor returns the current moment index.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}
