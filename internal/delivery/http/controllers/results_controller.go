package controllers

import (
	"log/slog"
	"net/http"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/domain"
)

type SessionResultsSuccessResponse struct {
	Data  *domain.SessionResults `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type ResultsController struct {
	Logger  *slog.Logger
	Service domain.ResultsService
}

func NewResultsController(logger *slog.Logger, svc domain.ResultsService) *ResultsController {
	return &ResultsController{
		Logger:  logger,
		Service: svc,
	}
}

// Get godoc
// @Summary Get a session's results
// @Description Voters, every voted slot ranked by votes, and the aggregated restaurant conditions.
// @Tags votes
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} controllers.SessionResultsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/votes/results/{sessionID} [get]
func (c *ResultsController) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	results, err := c.Service.Results(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, results)
}
