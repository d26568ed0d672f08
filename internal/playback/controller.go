// Package playback steps through a dataset's timeline.
//
// Controller is a pure state machine: nothing in it knows about time. Player
// drives a Controller from a ticker and is what interactive callers hold.
package playback

// DefaultScrubAcceleration is added to the scrub speed for every step taken
// while the scrub input stays held.
const DefaultScrubAcceleration = 40

// Config tunes a Controller.
type Config struct {
	// ScrubAcceleration is the speed increment per held scrub step.
	// Zero or negative means DefaultScrubAcceleration.
	ScrubAcceleration float64
}

// DefaultConfig returns the standard controller tuning.
func DefaultConfig() Config {
	return Config{ScrubAcceleration: DefaultScrubAcceleration}
}

func (c Config) scrubAcceleration() float64 {
	if c.ScrubAcceleration > 0 {
		return c.ScrubAcceleration
	}
	return DefaultScrubAcceleration
}

// State is a snapshot of playback. Indices address Timeline.Values.
type State struct {
	CurrentIndex int
	StartIndex   int
	EndIndex     int
	Speed        float64
	Playing      bool
}

// Controller holds playback state over a fixed number of frames.
//
// StartIndex <= CurrentIndex <= EndIndex and Speed >= 1 hold after every
// call. Inputs are never rejected; out-of-range requests are clamped.
// Controller is not safe for concurrent use; Player serialises access.
type Controller struct {
	enabled bool
	accel   float64
	state   State
}

// NewController returns a stopped controller positioned on the first of
// frames frames. With no frames the controller is disabled and every
// operation is a no-op.
func NewController(frames int, cfg Config) *Controller {
	c := &Controller{
		enabled: frames > 0,
		accel:   cfg.scrubAcceleration(),
		state:   State{Speed: 1},
	}
	if c.enabled {
		c.state.EndIndex = frames - 1
	}
	return c
}

// Enabled reports whether there is anything to play.
func (c *Controller) Enabled() bool { return c.enabled }

// State returns the current snapshot.
func (c *Controller) State() State { return c.state }

// Playing reports whether the controller is in the playing state.
func (c *Controller) Playing() bool { return c.state.Playing }

// Play starts playback unless already at the last frame.
func (c *Controller) Play() {
	if !c.enabled || c.state.Playing {
		return
	}
	if c.state.CurrentIndex < c.state.EndIndex {
		c.state.Playing = true
	}
}

// Tick advances one frame while playing. Reaching the last frame stops
// playback.
func (c *Controller) Tick() {
	if !c.enabled || !c.state.Playing {
		return
	}
	if c.state.CurrentIndex < c.state.EndIndex {
		c.state.CurrentIndex++
	}
	if c.state.CurrentIndex >= c.state.EndIndex {
		c.state.CurrentIndex = c.state.EndIndex
		c.state.Playing = false
	}
}

// Stop pauses playback. Calling it again changes nothing.
func (c *Controller) Stop() {
	c.state.Playing = false
}

// Reset rewinds to the first frame and stops.
func (c *Controller) Reset() {
	c.state.CurrentIndex = c.state.StartIndex
	c.state.Playing = false
	c.state.Speed = 1
}

// Toggle plays when stopped and stops when playing.
func (c *Controller) Toggle() {
	if c.state.Playing {
		c.Stop()
		return
	}
	c.Play()
}

// Scrub applies one frame of held scrub input. direction is reduced to its
// sign. While held, the index moves by direction*speed and speed grows by
// the configured acceleration; a move that would leave the timeline lands
// on the bound instead and does not accelerate. Releasing (held false)
// resets speed to 1.
func (c *Controller) Scrub(direction int, held bool) {
	if !held {
		c.state.Speed = 1
		return
	}
	if !c.enabled || direction == 0 {
		return
	}
	step := 1
	if direction < 0 {
		step = -1
	}

	target := c.state.CurrentIndex + step*int(c.state.Speed)
	switch {
	case target < c.state.StartIndex:
		c.state.CurrentIndex = c.state.StartIndex
	case target > c.state.EndIndex:
		c.state.CurrentIndex = c.state.EndIndex
	default:
		c.state.CurrentIndex = target
		c.state.Speed += c.accel
	}
}

// Seek jumps to index, clamped to the timeline. Playback state is kept.
func (c *Controller) Seek(index int) {
	if !c.enabled {
		return
	}
	c.state.CurrentIndex = clamp(index, c.state.StartIndex, c.state.EndIndex)
	if c.state.CurrentIndex >= c.state.EndIndex {
		c.state.Playing = false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
