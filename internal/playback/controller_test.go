package playback

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBounds(t *testing.T, c *Controller) {
	t.Helper()
	s := c.State()
	if s.CurrentIndex < s.StartIndex || s.CurrentIndex > s.EndIndex {
		t.Fatalf("index %d outside [%d, %d]", s.CurrentIndex, s.StartIndex, s.EndIndex)
	}
	if s.Speed < 1 {
		t.Fatalf("speed %v below 1", s.Speed)
	}
}

func TestController_PlayThreeTicks(t *testing.T) {
	c := NewController(10, DefaultConfig())
	c.Play()
	for i := 0; i < 3; i++ {
		c.Tick()
	}

	s := c.State()
	assert.Equal(t, 3, s.CurrentIndex)
	assert.True(t, s.Playing)
}

func TestController_TickClampsAtEnd(t *testing.T) {
	// Three frames: indices 0..2, as for time tags [5, 7, 9].
	c := NewController(3, DefaultConfig())
	c.Play()
	c.Tick()
	c.Tick()
	c.Tick()

	s := c.State()
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, 2, s.EndIndex)
	assert.False(t, s.Playing)
}

func TestController_PlayAtEndStaysStopped(t *testing.T) {
	c := NewController(3, DefaultConfig())
	c.Seek(2)
	c.Play()
	assert.False(t, c.Playing())

	single := NewController(1, DefaultConfig())
	single.Play()
	assert.False(t, single.Playing())
}

func TestController_TickWhileStopped(t *testing.T) {
	c := NewController(5, DefaultConfig())
	c.Tick()
	assert.Equal(t, 0, c.State().CurrentIndex)
}

func TestController_StopIdempotent(t *testing.T) {
	c := NewController(5, DefaultConfig())
	c.Play()
	c.Tick()

	c.Stop()
	once := c.State()
	c.Stop()
	assert.Equal(t, once, c.State())
	assert.False(t, once.Playing)
	assert.Equal(t, 1, once.CurrentIndex)
}

func TestController_ResetAndToggle(t *testing.T) {
	c := NewController(5, DefaultConfig())
	c.Toggle()
	require.True(t, c.Playing())
	c.Tick()
	c.Tick()
	c.Scrub(1, true)
	c.Toggle()
	assert.False(t, c.Playing())

	c.Reset()
	s := c.State()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, 1.0, s.Speed)
	assert.False(t, s.Playing)
}

func TestController_Scrub(t *testing.T) {
	c := NewController(200, DefaultConfig())

	c.Scrub(1, true)
	assert.Equal(t, 1, c.State().CurrentIndex)
	assert.Equal(t, 41.0, c.State().Speed)

	c.Scrub(1, true)
	assert.Equal(t, 42, c.State().CurrentIndex)
	assert.Equal(t, 81.0, c.State().Speed)

	c.Scrub(-1, true)
	assert.Equal(t, 0, c.State().CurrentIndex, "81 back from 42 clamps to the start")
	assert.Equal(t, 81.0, c.State().Speed, "a clamped step does not accelerate")

	c.Scrub(1, false)
	assert.Equal(t, 1.0, c.State().Speed)
	assert.Equal(t, 0, c.State().CurrentIndex)
}

func TestController_ScrubForwardClamp(t *testing.T) {
	c := NewController(10, Config{ScrubAcceleration: 5})
	c.Scrub(3, true)
	c.Scrub(3, true)
	assert.Equal(t, 7, c.State().CurrentIndex)
	c.Scrub(1, true)
	assert.Equal(t, 9, c.State().CurrentIndex)
}

func TestController_Seek(t *testing.T) {
	c := NewController(10, DefaultConfig())
	c.Seek(4)
	assert.Equal(t, 4, c.State().CurrentIndex)
	c.Seek(-3)
	assert.Equal(t, 0, c.State().CurrentIndex)
	c.Play()
	c.Seek(50)
	assert.Equal(t, 9, c.State().CurrentIndex)
	assert.False(t, c.Playing())
}

func TestController_Disabled(t *testing.T) {
	c := NewController(0, DefaultConfig())
	assert.False(t, c.Enabled())

	c.Play()
	c.Tick()
	c.Scrub(1, true)
	c.Seek(3)
	c.Toggle()

	assert.Equal(t, State{Speed: 1}, c.State())
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, 40.0, Config{}.scrubAcceleration())
	assert.Equal(t, 40.0, Config{ScrubAcceleration: -1}.scrubAcceleration())
	assert.Equal(t, 7.0, Config{ScrubAcceleration: 7}.scrubAcceleration())
}

// Random sequences of inputs never leave the timeline or drop speed below 1.
func TestController_BoundsHoldUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		c := NewController(1+rng.Intn(30), Config{ScrubAcceleration: float64(rng.Intn(50))})
		for step := 0; step < 200; step++ {
			switch rng.Intn(8) {
			case 0:
				c.Play()
			case 1:
				c.Tick()
			case 2:
				c.Stop()
			case 3:
				c.Reset()
			case 4:
				c.Toggle()
			case 5:
				c.Scrub(rng.Intn(5)-2, rng.Intn(4) != 0)
			case 6:
				c.Seek(rng.Intn(80) - 20)
			default:
				c.Tick()
			}
			assertBounds(t, c)
		}
	}
}
