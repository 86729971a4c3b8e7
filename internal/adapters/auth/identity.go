package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"groupschedule/internal/poll"
)

// ErrLoginUnavailable is returned by TokenIdentityProvider.Login; a token has to be supplied up front.
var ErrLoginUnavailable = errors.New("interactive login is not available")

// TokenIdentityProvider reads the participant profile from a token issued by the
// API. It runs on the client, which does not hold the signing secret, so the
// signature is left to the server and only the claims and expiry are checked.
type TokenIdentityProvider struct {
	token string
	now   func() time.Time

	mu      sync.Mutex
	claims  *participantClaims
	initErr error
}

var _ poll.IdentityProvider = (*TokenIdentityProvider)(nil)

// NewTokenIdentityProvider returns a provider for token. An empty token is never logged in.
func NewTokenIdentityProvider(token string) *TokenIdentityProvider {
	return &TokenIdentityProvider{token: token, now: time.Now}
}

// Init decodes the token claims.
func (p *TokenIdentityProvider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claims, p.initErr = nil, nil
	if p.token == "" {
		return nil
	}
	claims := &participantClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.token, claims); err != nil {
		p.initErr = ErrInvalidToken
		return p.initErr
	}
	if claims.Subject == "" {
		p.initErr = ErrInvalidToken
		return p.initErr
	}
	p.claims = claims
	return nil
}

// IsLoggedIn reports whether Init found an unexpired token.
func (p *TokenIdentityProvider) IsLoggedIn(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.claims == nil {
		return false
	}
	if exp := p.claims.ExpiresAt; exp != nil && !p.now().Before(exp.Time) {
		return false
	}
	return true
}

func (p *TokenIdentityProvider) Login(ctx context.Context) error {
	return ErrLoginUnavailable
}

// GetProfile returns the participant carried by the token.
func (p *TokenIdentityProvider) GetProfile(ctx context.Context) (poll.Profile, error) {
	if !p.IsLoggedIn(ctx) {
		return poll.Profile{}, ErrInvalidToken
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return poll.Profile{
		ParticipantID: p.claims.Subject,
		DisplayName:   p.claims.DisplayName,
		PictureURL:    p.claims.PictureURL,
	}, nil
}
