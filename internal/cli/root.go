package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"groupschedule/internal/poll"
)

// Context is shared by every pollctl command.
type Context struct {
	Config  poll.Config
	Backend poll.Backend
	Token   string
	Out     io.Writer
	Logger  *slog.Logger
	Now     func() time.Time
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// sessionArg maps the CLI's 0 to the session-less poll.
func sessionArg(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func sessionName(id *int64) string {
	if id == nil {
		return "(no session)"
	}
	return fmt.Sprintf("#%d", *id)
}

// printSummary writes the tally ordered by count, then label. Popular labels are starred.
func printSummary(w io.Writer, s poll.Summary) {
	fmt.Fprintf(w, "Voters: %d\n", s.TotalVoters)
	if len(s.VoteCounts) == 0 {
		fmt.Fprintln(w, "  No votes yet")
		return
	}
	popular := make(map[string]bool)
	for _, label := range poll.PopularLabels(s) {
		popular[label] = true
	}
	labels := make([]string, 0, len(s.VoteCounts))
	for label := range s.VoteCounts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if s.VoteCounts[labels[i]] != s.VoteCounts[labels[j]] {
			return s.VoteCounts[labels[i]] > s.VoteCounts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		mark := " "
		if popular[label] {
			mark = "*"
		}
		var names []string
		for _, v := range s.VotersByLabel[label] {
			name := v.DisplayName
			if name == "" {
				name = v.ParticipantID
			}
			names = append(names, name)
		}
		fmt.Fprintf(w, "%s %-28s %3d  %s\n", mark, label, s.VoteCounts[label], strings.Join(names, ", "))
	}
}

func printDeadline(w io.Writer, d *poll.DeadlineController, loc *time.Location) {
	at, ok := d.Deadline()
	state := d.State()
	switch {
	case !ok:
		fmt.Fprintln(w, "Deadline: unknown (voting open)")
	case state == poll.DeadlineExpired:
		fmt.Fprintf(w, "Deadline: %s (closed)\n", at.In(loc).Format("2006-01-02 15:04"))
	default:
		fmt.Fprintf(w, "Deadline: %s (%s left)\n", at.In(loc).Format("2006-01-02 15:04"), poll.FormatRemaining(d.RemainingSeconds()))
	}
}
