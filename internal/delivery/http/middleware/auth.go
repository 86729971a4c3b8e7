package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "groupschedule/internal/delivery/http/helpers"
	"groupschedule/internal/domain"
)

type contextKey string

const participantKey contextKey = "participant"

// SetParticipant returns a context carrying the authenticated participant.
func SetParticipant(ctx context.Context, p *domain.Participant) context.Context {
	return context.WithValue(ctx, participantKey, p)
}

// ParticipantFromContext returns the authenticated participant, if present.
func ParticipantFromContext(ctx context.Context) (*domain.Participant, bool) {
	p, ok := ctx.Value(participantKey).(*domain.Participant)
	return p, ok && p != nil
}

// OptionalParticipant verifies a Bearer token when one is sent and stores the
// participant in the request context. Requests without Authorization pass through
// unchanged; a malformed or invalid token is answered with 401.
func OptionalParticipant(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next(w, r)
				return
			}
			p, ok := authenticate(w, r, verifier, logger, auth)
			if !ok {
				return
			}
			next(w, r.WithContext(SetParticipant(r.Context(), p)))
		}
	}
}

// RequireParticipant is like OptionalParticipant but rejects requests without a token.
func RequireParticipant(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			p, ok := authenticate(w, r, verifier, logger, auth)
			if !ok {
				return
			}
			next(w, r.WithContext(SetParticipant(r.Context(), p)))
		}
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, verifier domain.TokenVerifier, logger *slog.Logger, auth string) (*domain.Participant, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
		return nil, false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
		return nil, false
	}
	p, err := verifier.Verify(token)
	if err != nil {
		logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
		return nil, false
	}
	return p, true
}
