package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"groupschedule/internal/delivery/http/controllers"
	"groupschedule/internal/delivery/http/middleware"
	"groupschedule/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Votes        *controllers.VoteController
	Deadlines    *controllers.DeadlineController
	Participants *controllers.ParticipantController
	Survey       *controllers.SurveyController
	Results      *controllers.ResultsController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	optional := middleware.OptionalParticipant(verifier, logger)
	required := middleware.RequireParticipant(verifier, logger)

	// Votes
	mux.HandleFunc("POST /api/events/vote", optional(c.Votes.Submit))
	mux.HandleFunc("GET /api/events/votes", c.Votes.List)
	mux.HandleFunc("GET /api/events/votes/summary", c.Votes.Summary)
	mux.HandleFunc("DELETE /api/events/votes/{participantID}", c.Votes.Delete)
	mux.HandleFunc("GET /api/votes/check/{sessionID}", c.Votes.Completion)
	mux.HandleFunc("GET /api/votes/results/{sessionID}", c.Results.Get)

	// Deadlines
	mux.HandleFunc("POST /api/events/deadline/{sessionID}/ensure", c.Deadlines.Ensure)
	mux.HandleFunc("GET /api/events/deadline/{sessionID}", c.Deadlines.Get)
	mux.HandleFunc("GET /api/events/deadline/{sessionID}/check", c.Deadlines.Check)

	// Participants
	mux.HandleFunc("PUT /api/participants/me", required(c.Participants.UpdateMe))

	// Survey
	mux.HandleFunc("POST /api/survey/conditions", optional(c.Survey.Save))
	mux.HandleFunc("GET /api/survey/conditions/{sessionID}", c.Survey.List)
	mux.HandleFunc("GET /api/survey/conditions/{sessionID}/aggregated", c.Survey.Aggregated)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
