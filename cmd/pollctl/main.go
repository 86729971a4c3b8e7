package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"groupschedule/config"
	"groupschedule/internal/adapters/pollapi"
	"groupschedule/internal/cli"
	"groupschedule/internal/poll"
)

var CLI struct {
	Version  kong.VersionFlag
	Backend  string        `help:"Base URL of the group schedule API." env:"POLL_BACKEND_URL" default:"http://localhost:8080"`
	Auth     string        `name:"token" help:"Participant token; anonymous voting when empty." env:"POLL_TOKEN"`
	Timezone string        `help:"Timezone for candidate slots." env:"POLL_TIMEZONE" default:"Asia/Tokyo"`
	Days     int           `help:"Number of candidate days." default:"14"`
	Timeout  time.Duration `help:"HTTP timeout per request." default:"10s"`
	Verbose  bool          `help:"Log requests and retries to stderr." short:"v"`

	Slots    cli.SlotsCmd    `cmd:"" help:"List the candidate slots."`
	Vote     cli.VoteCmd     `cmd:"" help:"Submit availability for the candidate slots." default:"1"`
	Summary  cli.SummaryCmd  `cmd:"" help:"Show the vote tally."`
	Deadline cli.DeadlineCmd `cmd:"" help:"Show the voting deadline, creating it if needed."`
	Token    cli.TokenCmd    `cmd:"" help:"Issue a participant token."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pollctl"),
		kong.Description("Vote on candidate meeting slots for a group session"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	pollCfg := poll.DefaultConfig()
	pollCfg.BackendURL = CLI.Backend
	pollCfg.CandidateHorizonDays = CLI.Days
	pollCfg.Location = config.LoadLocation(CLI.Timezone)

	appCtx := &cli.Context{
		Config:  pollCfg,
		Backend: pollapi.NewClient(pollCfg.BackendURL, &http.Client{Timeout: CLI.Timeout}, CLI.Auth),
		Token:   CLI.Auth,
		Out:     os.Stdout,
		Logger:  logger,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
