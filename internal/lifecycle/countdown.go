package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Direction selects whether a countdown runs toward a future target (down)
// or away from a past one (up, e.g. time spent overdue).
type Direction int

const (
	DirectionDown Direction = iota
	DirectionUp
)

type CountdownState int

const (
	StateIdle CountdownState = iota
	StateRunning
	StateComplete
)

// Snapshot is one observation of a countdown.
type Snapshot struct {
	HasTarget         bool   `json:"has_target"`
	IsComplete        bool   `json:"is_complete"`
	TotalMilliseconds int64  `json:"total_ms"`
	Formatted         string `json:"formatted"`
	NowMs             int64  `json:"now_ms"`
}

// CountdownConfig configures a single countdown instance.
type CountdownConfig struct {
	Target    time.Time
	HasTarget bool
	Direction Direction
	// AutoStop stops the ticker once a downward countdown reaches zero.
	// Upward countdowns never complete regardless of this flag.
	AutoStop bool
	// Interval defaults to one second.
	Interval time.Duration
	// OnTick receives a snapshot on every tick. Never invoked after Stop
	// returns.
	OnTick func(Snapshot)
}

// Countdown is a cooperative per-view ticking clock. Each tick re-reads the
// injected clock rather than accumulating deltas, so wall-clock drift and
// suspended processes self-correct on the next tick. Instances share no
// state; each one is owned by exactly one view and must be stopped by it.
type Countdown struct {
	clock Clock
	cfg   CountdownConfig

	mu     sync.Mutex
	state  CountdownState
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCountdown(clock Clock, cfg CountdownConfig) *Countdown {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Countdown{
		clock: clock,
		cfg:   cfg,
		state: StateIdle,
	}
}

// Start begins ticking. It is an error to start a countdown that is already
// running or complete.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return fmt.Errorf("countdown already started (state %d)", c.state)
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateRunning
	go c.run(runCtx)
	return nil
}

// Stop cancels the tick loop and blocks until it has exited. Once Stop
// returns, no further OnTick callback fires. Safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.state == StateRunning {
		c.state = StateIdle
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stop := c.Tick(); stop {
				return
			}
		}
	}
}

// Tick performs one observation and delivers it to OnTick. It returns true
// when the loop should stop. Exposed so tests can drive ticks with a frozen
// clock instead of waiting out real intervals.
func (c *Countdown) Tick() bool {
	snap := c.Observe()

	completes := c.cfg.Direction == DirectionDown && c.cfg.AutoStop && snap.TotalMilliseconds <= 0

	c.mu.Lock()
	if c.state != StateRunning {
		// Stopped between the ticker firing and now; the view is gone,
		// drop the tick.
		c.mu.Unlock()
		return true
	}
	if completes {
		c.state = StateComplete
		snap.IsComplete = true
	}
	onTick := c.cfg.OnTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
	return completes
}

// Observe computes the current snapshot without side effects.
func (c *Countdown) Observe() Snapshot {
	now := c.clock.Now()
	snap := Snapshot{
		HasTarget: c.cfg.HasTarget,
		NowMs:     now.UnixMilli(),
	}
	if !c.cfg.HasTarget {
		snap.Formatted = FormatHMS(0)
		return snap
	}

	var total time.Duration
	if c.cfg.Direction == DirectionDown {
		total = c.cfg.Target.Sub(now)
	} else {
		total = now.Sub(c.cfg.Target)
		if total < 0 {
			total = 0
		}
	}
	snap.TotalMilliseconds = total.Milliseconds()
	if c.cfg.Direction == DirectionDown && c.cfg.AutoStop && total <= 0 {
		snap.IsComplete = true
	}
	snap.Formatted = FormatHMS(total)
	return snap
}

// FormatHMS renders a duration as "HHh MMm SSs". Negative durations render
// as zero; hours are not capped at 24.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, s)
}
