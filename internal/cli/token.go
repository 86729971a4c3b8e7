package cli

import (
	"errors"
	"fmt"
	"time"

	"groupschedule/internal/adapters/auth"
	"groupschedule/internal/domain"
)

type TokenCmd struct {
	Participant string        `arg:"" help:"Participant ID to issue the token for."`
	Name        string        `help:"Display name."`
	Picture     string        `help:"Profile picture URL."`
	Secret      string        `help:"Signing secret; must match the server's JWT_SECRET." env:"JWT_SECRET"`
	Expiry      time.Duration `help:"Token lifetime." default:"24h"`
}

func (c *TokenCmd) Run(ctx *Context) error {
	if c.Secret == "" {
		return errors.New("a signing secret is required (--secret or JWT_SECRET)")
	}
	token, err := auth.NewJWT(c.Secret).Issue(&domain.Participant{
		ParticipantID: c.Participant,
		DisplayName:   c.Name,
		PictureURL:    c.Picture,
	}, c.Expiry)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, token)
	return nil
}
