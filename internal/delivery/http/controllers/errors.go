package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/domain"
)

// writeServiceError maps domain sentinels to status codes. Anything else is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDeadlineExpired):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeDeadlineExpired, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
