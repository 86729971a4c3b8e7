package cli

import (
	"context"

	"groupschedule/internal/poll"
)

type DeadlineCmd struct {
	Session int64 `arg:"" help:"Session ID."`
}

func (c *DeadlineCmd) Run(ctx *Context) error {
	d := poll.NewDeadlineController(ctx.Backend, ctx.Config.DeadlinePollInterval, ctx.Now, ctx.Logger)
	if _, err := d.Ensure(context.Background(), c.Session); err != nil {
		return err
	}
	printDeadline(ctx.Out, d, ctx.Config.Location)
	return nil
}
