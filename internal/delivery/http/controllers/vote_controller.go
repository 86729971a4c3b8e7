package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/delivery/http/middleware"
	"groupschedule/internal/domain"
)

// SubmitVoteRequest is the request body for POST /api/events/vote.
// participant_id is ignored when a participant token is presented.
type SubmitVoteRequest struct {
	ParticipantID string                 `json:"participant_id"`
	SessionID     *int64                 `json:"session_id"`
	Selections    []domain.VoteSelection `json:"selections"`
}

// Validate implements Validator.
func (req SubmitVoteRequest) Validate() []string {
	var errs []string
	if len(req.Selections) == 0 {
		errs = append(errs, "selections must not be empty")
	}
	for i, s := range req.Selections {
		if s.Date == "" {
			errs = append(errs, "selections["+strconv.Itoa(i)+"].date is required")
		}
	}
	return errs
}

// SubmitVoteResponse is returned after a vote has been stored.
type SubmitVoteResponse struct {
	ParticipantID string `json:"participant_id"`
	SessionID     *int64 `json:"session_id"`
	SavedCount    int    `json:"saved_count"`
}

// SubmitVoteSuccessResponse is the success envelope for POST /api/events/vote (201).
type SubmitVoteSuccessResponse struct {
	Data  SubmitVoteResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListVotesResponse is the data of GET /api/events/votes.
type ListVotesResponse struct {
	Votes      []*domain.Vote         `json:"votes"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// VoteSummarySuccessResponse is the success envelope for GET /api/events/votes/summary.
type VoteSummarySuccessResponse struct {
	Data  *domain.VoteSummary `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteVotesResponse reports how many vote rows were removed.
type DeleteVotesResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// CompletionSuccessResponse is the success envelope for GET /api/votes/check/{sessionID}.
type CompletionSuccessResponse struct {
	Data  *domain.CompletionStatus `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type VoteController struct {
	Logger  *slog.Logger
	Service domain.VoteService
}

func NewVoteController(logger *slog.Logger, svc domain.VoteService) *VoteController {
	return &VoteController{
		Logger:  logger,
		Service: svc,
	}
}

// Submit godoc
// @Summary Submit availability votes
// @Description Replaces the participant's selections for the session. Rejected with deadline_expired once the session deadline has passed.
// @Tags votes
// @Accept json
// @Produce json
// @Param vote body SubmitVoteRequest true "Vote"
// @Success 201 {object} controllers.SubmitVoteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: deadline_expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/vote [post]
func (c *VoteController) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitVoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if p, ok := middleware.ParticipantFromContext(r.Context()); ok {
		req.ParticipantID = p.ParticipantID
	}
	record := &domain.VoteRecord{
		ParticipantID: req.ParticipantID,
		SessionID:     req.SessionID,
		Selections:    req.Selections,
	}
	saved, err := c.Service.Submit(r.Context(), record)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, SubmitVoteResponse{
		ParticipantID: record.ParticipantID,
		SessionID:     record.SessionID,
		SavedCount:    saved,
	})
}

// List godoc
// @Summary List votes
// @Tags votes
// @Produce json
// @Param participant_id query string false "Participant ID"
// @Param session_id query int false "Session ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} helpers.APIResponse "data: ListVotesResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/votes [get]
func (c *VoteController) List(w http.ResponseWriter, r *http.Request) {
	sessionID, err := helpers.ParseOptionalInt64(r, "session_id")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid session_id")
		return
	}
	page := helpers.ParsePagination(r)
	filter := domain.VoteFilter{
		ParticipantID: r.URL.Query().Get("participant_id"),
		SessionID:     sessionID,
	}
	votes, total, err := c.Service.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if votes == nil {
		votes = []*domain.Vote{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListVotesResponse{
		Votes:      votes,
		Pagination: helpers.NewPaginationMeta(page.Page, page.PageSize, total),
	})
}

// Summary godoc
// @Summary Vote summary
// @Description Distinct voters, per-slot counts and voters per slot, keyed by slot label.
// @Tags votes
// @Produce json
// @Param session_id query int false "Session ID; omitted for the session-less poll"
// @Success 200 {object} controllers.VoteSummarySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/votes/summary [get]
func (c *VoteController) Summary(w http.ResponseWriter, r *http.Request) {
	sessionID, err := helpers.ParseOptionalInt64(r, "session_id")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid session_id")
		return
	}
	summary, err := c.Service.Summary(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// Delete godoc
// @Summary Delete a participant's votes
// @Tags votes
// @Produce json
// @Param participantID path string true "Participant ID"
// @Param session_id query int false "Restrict to one session"
// @Success 200 {object} helpers.APIResponse "data: DeleteVotesResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/votes/{participantID} [delete]
func (c *VoteController) Delete(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")
	if participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing participantID")
		return
	}
	sessionID, err := helpers.ParseOptionalInt64(r, "session_id")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid session_id")
		return
	}
	n, err := c.Service.Delete(r.Context(), participantID, sessionID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteVotesResponse{DeletedCount: n})
}

// Completion godoc
// @Summary Check voting completion
// @Description Complete once at least expected_voters have voted. Without expected_voters the current voters are taken as everyone.
// @Tags votes
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param expected_voters query int false "Expected number of voters"
// @Success 200 {object} controllers.CompletionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/votes/check/{sessionID} [get]
func (c *VoteController) Completion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	var expected *int
	if s := r.URL.Query().Get("expected_voters"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid expected_voters")
			return
		}
		expected = &v
	}
	status, err := c.Service.Completion(r.Context(), sessionID, expected)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}

// parseSessionID reads the sessionID path value. It writes a 400 and returns false when invalid.
func parseSessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("sessionID"), 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid sessionID")
		return 0, false
	}
	return id, true
}
