package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Option configures a PollSession.
type Option func(*PollSession)

// WithLogger sets the session logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *PollSession) { s.logger = l }
}

// WithClock replaces time.Now for slot generation and deadline checks.
func WithClock(now func() time.Time) Option {
	return func(s *PollSession) { s.now = now }
}

// View is a point-in-time snapshot of a PollSession.
type View struct {
	SessionID        *int64
	Participant      Identity
	Slots            []Slot
	Selected         map[string]bool
	Summary          *Summary
	PopularLabels    []string
	DeadlineState    DeadlineState
	Deadline         time.Time
	RemainingSeconds int64
	CanSubmit        bool
	VoteSaved        bool
	LastError        error
}

// PollSession drives one participant's poll for one session: the candidate
// slate, the selection, the deadline countdown, submission and the survey handoff.
// Results of calls that finish after Close are dropped.
type PollSession struct {
	cfg      Config
	backend  Backend
	identity Identity
	gen      *Generator
	agg      *SummaryAggregator
	logger   *slog.Logger
	now      func() time.Time
	handoffs chan Handoff

	mu          sync.Mutex
	initialized bool
	closed      bool
	sessionID   *int64
	slots       []Slot
	selected    map[string]bool
	deadline    *DeadlineController
	summary     *Summary
	voteSaved   bool
	lastErr     error
	tickerCtx   context.Context
	stopTicker  context.CancelFunc
}

// NewPollSession returns an uninitialized session voting as identity.
func NewPollSession(cfg Config, backend Backend, identity Identity, opts ...Option) *PollSession {
	s := &PollSession{
		cfg:      cfg.withDefaults(),
		backend:  backend,
		identity: identity,
		now:      time.Now,
		handoffs: make(chan Handoff, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = discardLogger()
	}
	s.gen = NewGenerator(s.cfg)
	s.agg = NewSummaryAggregator(backend, s.logger)
	s.tickerCtx, s.stopTicker = context.WithCancel(context.Background())
	return s
}

// Initialize prepares the session: it generates the slate with every slot
// selected, ensures the deadline and starts its countdown, and loads the tally.
// Re-initializing the same session keeps the slate and selection. Deadline and
// summary failures are returned joined but leave the session usable.
func (s *PollSession) Initialize(ctx context.Context, sessionID *int64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.initialized || !sameSession(s.sessionID, sessionID) {
		if s.deadline != nil {
			s.deadline.Stop()
		}
		s.sessionID = copySession(sessionID)
		s.slots = s.gen.Generate(s.now())
		s.selected = make(map[string]bool, len(s.slots))
		for _, slot := range s.slots {
			s.selected[slot.ID] = true
		}
		s.deadline = NewDeadlineController(s.backend, s.cfg.DeadlinePollInterval, s.now, s.logger)
		s.summary = nil
		s.voteSaved = false
		s.lastErr = nil
		s.initialized = true
	}
	deadline := s.deadline
	s.mu.Unlock()

	var deadlineErr error
	if sessionID != nil {
		if _, err := deadline.Ensure(ctx, *sessionID); err != nil {
			deadlineErr = err
		} else if !s.isClosed() {
			deadline.Start(s.tickerCtx)
		}
	}
	_, summaryErr := s.refreshSummary(ctx)
	err := errors.Join(deadlineErr, summaryErr)
	s.setLastErrFor(sessionID, err)
	return err
}

// Toggle flips the selection of slotID. Unknown ids are ignored.
func (s *PollSession) Toggle(slotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[slotID]; ok {
		s.selected[slotID] = !s.selected[slotID]
	}
}

// SelectAll selects every slot.
func (s *PollSession) SelectAll() {
	s.setAll(true)
}

// DeselectAll clears the selection.
func (s *PollSession) DeselectAll() {
	s.setAll(false)
}

func (s *PollSession) setAll(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.selected {
		s.selected[id] = v
	}
}

// Submit sends the current selection as the participant's vote, replacing any
// earlier one, then refreshes the tally. The selection is captured before any
// network call, so later toggles do not affect an in-flight vote. If the session
// is closed or re-initialized for another session id meanwhile, the outcome is
// not applied to the current state.
func (s *PollSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	vote := Vote{
		ParticipantID: s.identity.ParticipantID,
		SessionID:     copySession(s.sessionID),
	}
	for _, slot := range s.slots {
		if s.selected[slot.ID] {
			vote.Selections = append(vote.Selections, slot.Selection())
		}
	}
	deadline := s.deadline
	s.mu.Unlock()

	if len(vote.Selections) == 0 {
		s.setLastErrFor(vote.SessionID, ErrEmptySelection)
		return ErrEmptySelection
	}
	if deadline.Tick() == DeadlineExpired {
		s.setLastErrFor(vote.SessionID, ErrDeadlineExpired)
		return ErrDeadlineExpired
	}

	if err := s.backend.SubmitVote(ctx, vote); err != nil {
		if errors.Is(err, ErrDeadlineRejected) {
			deadline.MarkExpired()
			s.logger.InfoContext(ctx, "vote rejected after deadline", "session_id", sessionValue(vote.SessionID))
			s.setLastErrFor(vote.SessionID, ErrDeadlineExpired)
			return ErrDeadlineExpired
		}
		s.logger.WarnContext(ctx, "vote submission failed", "session_id", sessionValue(vote.SessionID), "err", err)
		err = fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		s.setLastErrFor(vote.SessionID, err)
		return err
	}

	// The result only belongs to the session it was captured from.
	s.mu.Lock()
	current := !s.closed && sameSession(s.sessionID, vote.SessionID)
	if current {
		s.voteSaved = true
		s.lastErr = nil
	}
	s.mu.Unlock()
	if !current {
		s.logger.InfoContext(ctx, "vote saved for a session no longer shown", "session_id", sessionValue(vote.SessionID))
		return nil
	}
	s.logger.InfoContext(ctx, "vote saved", "session_id", sessionValue(vote.SessionID), "selections", len(vote.Selections))

	// The vote is stored; a stale tally is not a submit failure.
	if _, err := s.refreshSummary(ctx); err != nil {
		s.setLastErrFor(vote.SessionID, err)
	}
	return nil
}

// RequestHandoff signals that the participant may move on to the preference
// survey. It never blocks; a handoff that is already pending is not duplicated.
func (s *PollSession) RequestHandoff() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.voteSaved {
		return ErrVoteNotSaved
	}
	select {
	case s.handoffs <- Handoff{SessionID: copySession(s.sessionID), ParticipantID: s.identity.ParticipantID}:
	default:
	}
	return nil
}

// Handoffs delivers handoff requests.
func (s *PollSession) Handoffs() <-chan Handoff {
	return s.handoffs
}

// Close stops the countdown. Later calls fail with ErrSessionClosed and
// in-flight results are discarded.
func (s *PollSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	deadline := s.deadline
	s.mu.Unlock()

	s.stopTicker()
	if deadline != nil {
		deadline.Stop()
	}
}

// Deadline returns the controller of the current session, or nil before Initialize.
func (s *PollSession) Deadline() *DeadlineController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// View returns a snapshot of the session.
func (s *PollSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		SessionID:   copySession(s.sessionID),
		Participant: s.identity,
		Slots:       append([]Slot(nil), s.slots...),
		Selected:    make(map[string]bool, len(s.selected)),
		VoteSaved:   s.voteSaved,
		LastError:   s.lastErr,
	}
	anySelected := false
	for id, on := range s.selected {
		v.Selected[id] = on
		anySelected = anySelected || on
	}
	if s.summary != nil {
		sum := *s.summary
		v.Summary = &sum
		v.PopularLabels = PopularLabels(sum)
	}
	if s.deadline != nil {
		v.DeadlineState = s.deadline.Tick()
		v.Deadline, _ = s.deadline.Deadline()
		v.RemainingSeconds = s.deadline.RemainingSeconds()
	}
	v.CanSubmit = s.initialized && !s.closed && anySelected && v.DeadlineState != DeadlineExpired
	return v
}

// refreshSummary fetches the tally and applies it while the session is open.
func (s *PollSession) refreshSummary(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	sessionID := copySession(s.sessionID)
	s.mu.Unlock()

	sum, err := s.agg.Summarize(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && sameSession(s.sessionID, sessionID) {
		s.summary = &sum
	}
	return sum, nil
}

// setLastErrFor records err unless the session was closed or switched away from sessionID.
func (s *PollSession) setLastErrFor(sessionID *int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && sameSession(s.sessionID, sessionID) {
		s.lastErr = err
	}
}

func (s *PollSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func sameSession(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copySession(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
