package cli

import (
	"context"
	"errors"
	"fmt"

	"groupschedule/internal/adapters/auth"
	"groupschedule/internal/poll"
)

type VoteCmd struct {
	Session     int64    `help:"Session ID; 0 votes in the session-less poll." default:"0"`
	Participant string   `help:"Anonymous participant ID used when no valid token is given."`
	Only        []string `help:"Vote only for these dates (YYYY-MM-DD)." sep:","`
	Skip        []string `help:"Leave these dates (YYYY-MM-DD) unselected." sep:","`
}

func (c *VoteCmd) Run(ctx *Context) error {
	bg := context.Background()

	var newID func() string
	if c.Participant != "" {
		newID = func() string { return c.Participant }
	}
	identity := poll.ResolveIdentity(bg, auth.NewTokenIdentityProvider(ctx.Token), newID)

	opts := []poll.Option{poll.WithLogger(ctx.Logger)}
	if ctx.Now != nil {
		opts = append(opts, poll.WithClock(ctx.Now))
	}
	session := poll.NewPollSession(ctx.Config, ctx.Backend, identity, opts...)
	defer session.Close()

	sessionID := sessionArg(c.Session)
	if err := session.Initialize(bg, sessionID); err != nil {
		// Voting stays open without a deadline or tally.
		fmt.Fprintf(ctx.Out, "Warning: %v\n", err)
	}
	if err := c.applySelection(session); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Voting as %s (%s) in %s\n", identity.ParticipantID, identity.Kind, sessionName(sessionID))
	if d := session.Deadline(); d != nil && sessionID != nil {
		printDeadline(ctx.Out, d, ctx.Config.Location)
	}

	if err := session.Submit(bg); err != nil {
		return err
	}
	v := session.View()
	selected := 0
	for _, on := range v.Selected {
		if on {
			selected++
		}
	}
	fmt.Fprintf(ctx.Out, "Vote saved: %d of %d slots\n", selected, len(v.Slots))
	if v.Summary != nil {
		printSummary(ctx.Out, *v.Summary)
	}
	if v.LastError != nil {
		fmt.Fprintf(ctx.Out, "Warning: %v\n", v.LastError)
	}

	if err := session.RequestHandoff(); err != nil {
		return err
	}
	h := <-session.Handoffs()
	fmt.Fprintf(ctx.Out, "Next: restaurant survey for %s as %s\n", sessionName(h.SessionID), h.ParticipantID)
	return nil
}

func (c *VoteCmd) applySelection(s *poll.PollSession) error {
	if len(c.Only) == 0 && len(c.Skip) == 0 {
		return nil
	}
	v := s.View()
	byDate := make(map[string]string, len(v.Slots))
	for _, slot := range v.Slots {
		byDate[slot.DateKey] = slot.ID
	}
	lookup := func(date string) (string, error) {
		id, ok := byDate[date]
		if !ok {
			return "", fmt.Errorf("%s is not a candidate date", date)
		}
		return id, nil
	}

	if len(c.Only) > 0 {
		s.DeselectAll()
		for _, date := range c.Only {
			id, err := lookup(date)
			if err != nil {
				return err
			}
			if !s.View().Selected[id] {
				s.Toggle(id)
			}
		}
	}
	var errs []error
	for _, date := range c.Skip {
		id, err := lookup(date)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if s.View().Selected[id] {
			s.Toggle(id)
		}
	}
	return errors.Join(errs...)
}
