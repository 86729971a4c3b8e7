package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/domain"
)

// DeadlineStatusSuccessResponse is the success envelope for the ensure endpoint.
type DeadlineStatusSuccessResponse struct {
	Data  *domain.DeadlineStatus `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// DeadlineInfoResponse is the data of GET /api/events/deadline/{sessionID}.
// Deadline fields are present only when has_deadline is true.
type DeadlineInfoResponse struct {
	HasDeadline bool `json:"has_deadline"`
	*domain.DeadlineStatus
}

// DeadlineCheckResponse is the data of GET /api/events/deadline/{sessionID}/check.
type DeadlineCheckResponse struct {
	SessionID int64 `json:"session_id"`
	IsExpired bool  `json:"is_expired"`
	CanVote   bool  `json:"can_vote"`
}

type DeadlineController struct {
	Logger  *slog.Logger
	Service domain.DeadlineService
}

func NewDeadlineController(logger *slog.Logger, svc domain.DeadlineService) *DeadlineController {
	return &DeadlineController{
		Logger:  logger,
		Service: svc,
	}
}

// Ensure godoc
// @Summary Fetch or create a session deadline
// @Description Returns the existing deadline, or creates one with the configured duration. Existing deadlines are never moved.
// @Tags deadline
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} controllers.DeadlineStatusSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/deadline/{sessionID}/ensure [post]
func (c *DeadlineController) Ensure(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	status, err := c.Service.Ensure(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}

// Get godoc
// @Summary Get a session deadline
// @Tags deadline
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse "data: DeadlineInfoResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/deadline/{sessionID} [get]
func (c *DeadlineController) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	status, err := c.Service.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONSuccess(w, http.StatusOK, DeadlineInfoResponse{HasDeadline: false})
			return
		}
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeadlineInfoResponse{HasDeadline: true, DeadlineStatus: status})
}

// Check godoc
// @Summary Check whether voting is still open
// @Description Sessions without a deadline can be voted on.
// @Tags deadline
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse "data: DeadlineCheckResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/deadline/{sessionID}/check [get]
func (c *DeadlineController) Check(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	expired, err := c.Service.Check(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeadlineCheckResponse{
		SessionID: sessionID,
		IsExpired: expired,
		CanVote:   !expired,
	})
}
