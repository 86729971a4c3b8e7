package cli

import (
	"fmt"

	"groupschedule/internal/poll"
)

type SlotsCmd struct{}

func (c *SlotsCmd) Run(ctx *Context) error {
	slots := poll.NewGenerator(ctx.Config).Generate(ctx.now())
	for _, s := range slots {
		kind := "weekday"
		if s.IsWeekend {
			kind = "weekend"
		}
		fmt.Fprintf(ctx.Out, "%s  %-28s %s\n", s.DateKey, s.Label, kind)
	}
	return nil
}
