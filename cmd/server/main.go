package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"groupschedule/config"
	_ "groupschedule/docs"
	"groupschedule/internal/adapters/auth"
	deliveryhttp "groupschedule/internal/delivery/http"
	"groupschedule/internal/delivery/http/controllers"
	"groupschedule/internal/delivery/http/middleware"
	"groupschedule/internal/repository/postgres"
	"groupschedule/internal/services"
)

//	@title						Group Schedule API
//	@version					1.0
//	@description				Availability polls, session deadlines and the follow-up restaurant survey.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Participant token as "Bearer <token>".
func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger().Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := postgres.CreateSchema(ctx, db); err != nil {
		logger.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema ready")

	voteRepo := postgres.NewVoteRepository(db)
	deadlineRepo := postgres.NewDeadlineRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	surveyRepo := postgres.NewSurveyRepository(db)

	surveySvc := services.NewSurveyService(surveyRepo)

	tokens := auth.NewJWT(cfg.JWTSecret)
	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Votes:        controllers.NewVoteController(logger, services.NewVoteService(voteRepo, deadlineRepo)),
		Deadlines:    controllers.NewDeadlineController(logger, services.NewDeadlineService(deadlineRepo, cfg.DeadlineDuration, cfg.Location)),
		Participants: controllers.NewParticipantController(logger, services.NewParticipantService(participantRepo)),
		Survey:       controllers.NewSurveyController(logger, surveySvc),
		Results:      controllers.NewResultsController(logger, services.NewResultsService(voteRepo, surveySvc)),
	}, tokens, logger)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port, "env", cfg.Environment,
		"deadline", cfg.DeadlineDuration.String(), "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server closed", "error", err)
		os.Exit(1)
	}
	logger.Info("server closed")
}
