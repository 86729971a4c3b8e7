package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DeadlineState is the lifecycle of a session deadline.
type DeadlineState int

const (
	DeadlineUnset DeadlineState = iota
	DeadlineActive
	// DeadlineExpired is terminal.
	DeadlineExpired
)

func (s DeadlineState) String() string {
	switch s {
	case DeadlineUnset:
		return "unset"
	case DeadlineActive:
		return "active"
	case DeadlineExpired:
		return "expired"
	default:
		return fmt.Sprintf("DeadlineState(%d)", int(s))
	}
}

// DeadlineController tracks one session's deadline and its countdown.
type DeadlineController struct {
	svc      DeadlineService
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID int64
	state     DeadlineState
	at        time.Time
	expired   chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewDeadlineController returns an Unset controller. now defaults to time.Now.
func NewDeadlineController(svc DeadlineService, interval time.Duration, now func() time.Time, logger *slog.Logger) *DeadlineController {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = discardLogger()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &DeadlineController{
		svc:      svc,
		interval: interval,
		now:      now,
		logger:   logger,
		expired:  make(chan struct{}),
	}
}

// Ensure fetches or creates the session deadline. On failure the controller
// keeps its state and ErrDeadlineFetchFailed is returned; callers keep voting open.
func (c *DeadlineController) Ensure(ctx context.Context, sessionID int64) (time.Time, error) {
	c.mu.Lock()
	if c.state != DeadlineUnset && c.sessionID != sessionID {
		c.resetLocked()
	}
	c.mu.Unlock()

	d, err := c.svc.EnsureDeadline(ctx, sessionID)
	if err != nil {
		c.logger.WarnContext(ctx, "deadline ensure failed", "session_id", sessionID, "err", err)
		return time.Time{}, fmt.Errorf("%w: %w", ErrDeadlineFetchFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	if c.state == DeadlineExpired {
		return c.at, nil
	}
	c.at = d.At
	c.state = DeadlineActive
	if d.IsExpired || !c.now().Before(d.At) {
		c.expireLocked()
	}
	return c.at, nil
}

// State recomputes expiry and returns the current state.
func (c *DeadlineController) State() DeadlineState {
	return c.Tick()
}

// Deadline returns the deadline instant once known.
func (c *DeadlineController) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at, c.state != DeadlineUnset
}

// RemainingSeconds returns max(0, deadline-now) in whole seconds, or 0 when Unset.
func (c *DeadlineController) RemainingSeconds() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *DeadlineController) remainingLocked() int64 {
	if c.state != DeadlineActive {
		return 0
	}
	left := c.at.Sub(c.now())
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

// Tick recomputes expiry from the clock.
func (c *DeadlineController) Tick() DeadlineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DeadlineActive && !c.now().Before(c.at) {
		c.expireLocked()
	}
	return c.state
}

// MarkExpired forces Expired, e.g. after the server rejected a vote.
func (c *DeadlineController) MarkExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
}

// Expired is closed when the controller reaches Expired.
func (c *DeadlineController) Expired() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Start runs the countdown ticker until Expired, Stop, or ctx ends.
// Starting an already running countdown is a no-op.
func (c *DeadlineController) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil || c.state == DeadlineExpired {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done, c.expired)
}

func (c *DeadlineController) run(ctx context.Context, done, expired chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-expired:
			return
		case <-ticker.C:
			if c.Tick() == DeadlineExpired {
				return
			}
		}
	}
}

// Stop halts the countdown and waits for its goroutine to exit.
func (c *DeadlineController) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *DeadlineController) expireLocked() {
	if c.state == DeadlineExpired {
		return
	}
	c.state = DeadlineExpired
	close(c.expired)
}

// resetLocked forgets the current session and cancels its countdown.
func (c *DeadlineController) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel, c.done = nil, nil
	}
	c.state = DeadlineUnset
	c.at = time.Time{}
	c.expired = make(chan struct{})
}

// FormatRemaining renders seconds as "MM:SS", or "H:MM:SS" from one hour up.
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
