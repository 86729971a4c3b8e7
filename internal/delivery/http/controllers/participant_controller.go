package controllers

import (
	"log/slog"
	"net/http"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/delivery/http/middleware"
	"groupschedule/internal/domain"
)

// UpdateMeRequest is the request body for PUT /api/participants/me.
// Empty fields fall back to the values carried by the token.
type UpdateMeRequest struct {
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url"`
}

// ParticipantSuccessResponse is the success envelope for participant endpoints.
type ParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewParticipantController(logger *slog.Logger, svc domain.ParticipantService) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
	}
}

// UpdateMe godoc
// @Summary Register the caller's profile
// @Description Stores the display name and picture shown next to the caller's votes.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateMeRequest true "Profile"
// @Success 200 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/participants/me [put]
func (c *ParticipantController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	p := &domain.Participant{
		ParticipantID: caller.ParticipantID,
		DisplayName:   req.DisplayName,
		PictureURL:    req.PictureURL,
	}
	if p.DisplayName == "" {
		p.DisplayName = caller.DisplayName
	}
	if p.PictureURL == "" {
		p.PictureURL = caller.PictureURL
	}
	saved, err := c.Service.Upsert(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, saved)
}
