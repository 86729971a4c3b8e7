package cli

import (
	"context"
	"fmt"

	"groupschedule/internal/poll"
)

type SummaryCmd struct {
	Session int64 `arg:"" optional:"" help:"Session ID; omit for the session-less poll."`
}

func (c *SummaryCmd) Run(ctx *Context) error {
	agg := poll.NewSummaryAggregator(ctx.Backend, ctx.Logger)
	sessionID := sessionArg(c.Session)
	s, err := agg.Summarize(context.Background(), sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Summary for %s\n", sessionName(sessionID))
	printSummary(ctx.Out, s)
	return nil
}
