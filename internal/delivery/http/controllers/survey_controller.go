package controllers

import (
	"log/slog"
	"net/http"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/delivery/http/middleware"
	"groupschedule/internal/domain"
)

// SaveConditionsRequest is the request body for POST /api/survey/conditions.
type SaveConditionsRequest struct {
	ParticipantID string   `json:"participant_id"`
	SessionID     int64    `json:"session_id"`
	Area          string   `json:"area"`
	GenreCodes    []string `json:"genre_codes"`
	BudgetCode    string   `json:"budget_code"`
}

// Validate implements Validator.
func (req SaveConditionsRequest) Validate() []string {
	var errs []string
	if req.SessionID <= 0 {
		errs = append(errs, "session_id is required")
	}
	return errs
}

// SurveyConditionsSuccessResponse is the success envelope for POST /api/survey/conditions (201).
type SurveyConditionsSuccessResponse struct {
	Data  *domain.SurveyConditions `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// AggregatedConditionsSuccessResponse is the success envelope for the aggregated endpoint.
type AggregatedConditionsSuccessResponse struct {
	Data  *domain.AggregatedConditions `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type SurveyController struct {
	Logger  *slog.Logger
	Service domain.SurveyService
}

func NewSurveyController(logger *slog.Logger, svc domain.SurveyService) *SurveyController {
	return &SurveyController{
		Logger:  logger,
		Service: svc,
	}
}

// Save godoc
// @Summary Save restaurant preferences
// @Description Creates or replaces the participant's conditions for the session.
// @Tags survey
// @Accept json
// @Produce json
// @Param conditions body SaveConditionsRequest true "Conditions"
// @Success 201 {object} controllers.SurveyConditionsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/survey/conditions [post]
func (c *SurveyController) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveConditionsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if p, ok := middleware.ParticipantFromContext(r.Context()); ok {
		req.ParticipantID = p.ParticipantID
	}
	saved, err := c.Service.Save(r.Context(), &domain.SurveyConditions{
		ParticipantID: req.ParticipantID,
		SessionID:     req.SessionID,
		Area:          req.Area,
		GenreCodes:    req.GenreCodes,
		BudgetCode:    req.BudgetCode,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, saved)
}

// List godoc
// @Summary List a session's survey answers
// @Tags survey
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse "data: []SurveyConditions"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/survey/conditions/{sessionID} [get]
func (c *SurveyController) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	conditions, err := c.Service.List(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if conditions == nil {
		conditions = []*domain.SurveyConditions{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conditions)
}

// Aggregated godoc
// @Summary Aggregate a session's survey answers
// @Tags survey
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} controllers.AggregatedConditionsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/survey/conditions/{sessionID}/aggregated [get]
func (c *SurveyController) Aggregated(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	agg, err := c.Service.Aggregate(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, agg)
}
