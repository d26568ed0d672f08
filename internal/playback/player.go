package playback

import (
	"sync"
	"time"

	"github.com/banshee-data/pointplay/internal/cloud"
	"github.com/banshee-data/pointplay/internal/monitoring"
	"github.com/banshee-data/pointplay/internal/timeutil"
)

var logf = monitoring.Tagged("playback")

// DefaultInterval is the time between playback ticks.
const DefaultInterval = 20 * time.Millisecond

// PlayerConfig configures a Player.
type PlayerConfig struct {
	// Clock supplies the ticker. Defaults to timeutil.RealClock.
	Clock timeutil.Clock

	// Interval between ticks. Defaults to DefaultInterval.
	Interval time.Duration

	// OnFrame, when set, is called with the new state after every change.
	// Calls are serialised and arrive in the order the changes were made;
	// a notification overtaken by a newer one is dropped. OnFrame may call
	// State but must not call the other Player methods.
	OnFrame func(State)
}

// Player drives a Controller from a ticker. All methods are safe for
// concurrent use; calls are applied in the order they take the lock and the
// last one wins. No transition is queued.
type Player struct {
	mu       sync.Mutex
	ctrl     *Controller
	clock    timeutil.Clock
	interval time.Duration
	onFrame  func(State)

	// Set while a tick loop is running.
	stopCh chan struct{}
	loops  sync.WaitGroup
	closed bool

	// seq numbers state changes under mu; notified is the last one
	// delivered, under notifyMu.
	seq      uint64
	notifyMu sync.Mutex
	notified uint64
}

// NewPlayer wraps ctrl. The Player owns ctrl from here on.
func NewPlayer(ctrl *Controller, cfg PlayerConfig) *Player {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Player{
		ctrl:     ctrl,
		clock:    clock,
		interval: interval,
		onFrame:  cfg.OnFrame,
	}
}

// State returns the current snapshot.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl.State()
}

// Play starts playback and the tick loop. The ticker is created before Play
// returns.
func (p *Player) Play() {
	p.apply(func(c *Controller) {
		c.Play()
		if c.Playing() {
			p.startLocked()
		}
	})
}

// Stop pauses playback and cancels the tick loop immediately. A tick that
// is already being delivered is discarded.
func (p *Player) Stop() {
	p.apply(func(c *Controller) {
		c.Stop()
		p.stopLocked()
	})
}

// Reset rewinds to the first frame and stops.
func (p *Player) Reset() {
	p.apply(func(c *Controller) {
		c.Reset()
		p.stopLocked()
	})
}

// Toggle plays when stopped and stops when playing.
func (p *Player) Toggle() {
	p.apply(func(c *Controller) {
		c.Toggle()
		if c.Playing() {
			p.startLocked()
		} else {
			p.stopLocked()
		}
	})
}

// Scrub applies one frame of held scrub input. See Controller.Scrub.
func (p *Player) Scrub(direction int, held bool) {
	p.apply(func(c *Controller) {
		c.Scrub(direction, held)
	})
}

// Seek jumps to a frame index, clamped to the timeline.
func (p *Player) Seek(index int) {
	p.apply(func(c *Controller) {
		c.Seek(index)
		if !c.Playing() {
			p.stopLocked()
		}
	})
}

// Close stops playback and waits for every tick loop to exit, including
// one that stopped itself on the last frame and is still delivering it.
// The Player ignores every call after Close.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.ctrl.Stop()
	p.stopLocked()
	p.closed = true
	p.mu.Unlock()

	p.loops.Wait()
}

func (p *Player) apply(fn func(*Controller)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	before := p.ctrl.State()
	fn(p.ctrl)
	after := p.ctrl.State()
	changed := after != before
	var seq uint64
	if changed {
		seq = p.nextSeqLocked()
	}
	p.mu.Unlock()

	if changed {
		p.notify(after, seq)
	}
}

// nextSeqLocked numbers a state change. p.mu must be held.
func (p *Player) nextSeqLocked() uint64 {
	p.seq++
	return p.seq
}

func (p *Player) notify(s State, seq uint64) {
	if p.onFrame == nil {
		return
	}
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if seq <= p.notified {
		return
	}
	p.notified = seq
	p.onFrame(s)
}

// startLocked starts the tick loop if it is not already running.
// p.mu must be held.
func (p *Player) startLocked() {
	if p.stopCh != nil {
		return
	}
	stop := make(chan struct{})
	p.stopCh = stop
	p.loops.Add(1)

	ticker := p.clock.NewTicker(p.interval)
	logf("playing from frame %d of %d every %v", p.ctrl.State().CurrentIndex, p.ctrl.State().EndIndex, p.interval)
	go p.loop(ticker, stop)
}

// stopLocked signals the running tick loop, if any, to exit. It does not
// wait; Close does. p.mu must be held.
func (p *Player) stopLocked() {
	if p.stopCh == nil {
		return
	}
	close(p.stopCh)
	p.stopCh = nil
}

func (p *Player) loop(ticker timeutil.Ticker, stop chan struct{}) {
	defer p.loops.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		p.mu.Lock()
		select {
		case <-stop:
			// Stopped while this tick was in flight.
			p.mu.Unlock()
			return
		default:
		}
		before := p.ctrl.State()
		p.ctrl.Tick()
		s := p.ctrl.State()
		seq := p.nextSeqLocked()
		finished := !s.Playing
		if finished {
			p.stopLocked()
		}
		p.mu.Unlock()

		if s != before {
			p.notify(s, seq)
		}
		if finished {
			logf("reached frame %d; stopped", s.CurrentIndex)
			return
		}
	}
}

// Visible returns the points a renderer should draw for state: the bucket
// at the current index when ds has a timeline, otherwise every point.
func Visible(ds *cloud.Dataset, s State) []cloud.Point {
	if ds == nil {
		return nil
	}
	return ds.Frame(s.CurrentIndex)
}
