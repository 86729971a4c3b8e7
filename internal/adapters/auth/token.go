package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"groupschedule/internal/domain"
)

// ErrInvalidToken is returned by Verify for malformed, unsigned, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

type participantClaims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"display_name,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
}

// JWT signs and verifies participant identity tokens with HS256.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a participant token issuer and verifier using the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

func (j *JWT) Issue(p *domain.Participant, expiry time.Duration) (string, error) {
	if p == nil || p.ParticipantID == "" {
		return "", fmt.Errorf("%w: participant_id is required", domain.ErrInvalidInput)
	}
	now := j.now()
	claims := participantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ParticipantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		DisplayName: p.DisplayName,
		PictureURL:  p.PictureURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) Verify(tokenString string) (*domain.Participant, error) {
	claims := &participantClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &domain.Participant{
		ParticipantID: claims.Subject,
		DisplayName:   claims.DisplayName,
		PictureURL:    claims.PictureURL,
	}, nil
}
