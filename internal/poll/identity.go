package poll

import (
	"context"

	"github.com/google/uuid"
)

// Profile is what an identity provider knows about the logged-in user.
type Profile struct {
	ParticipantID string
	DisplayName   string
	PictureURL    string
}

// IdentityProvider is an external login capability.
type IdentityProvider interface {
	Init(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	GetProfile(ctx context.Context) (Profile, error)
}

// IdentityKind tags an Identity.
type IdentityKind int

const (
	IdentityAnonymous IdentityKind = iota
	IdentityAuthenticated
)

func (k IdentityKind) String() string {
	if k == IdentityAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Identity is the participant a PollSession votes as.
type Identity struct {
	Kind          IdentityKind
	ParticipantID string
	DisplayName   string
	PictureURL    string
}

// Authenticated returns an identity backed by a provider profile.
func Authenticated(p Profile) Identity {
	return Identity{
		Kind:          IdentityAuthenticated,
		ParticipantID: p.ParticipantID,
		DisplayName:   p.DisplayName,
		PictureURL:    p.PictureURL,
	}
}

// Anonymous returns an identity for a participant without a login.
func Anonymous(id string) Identity {
	return Identity{Kind: IdentityAnonymous, ParticipantID: id}
}

// NewAnonymousID returns a fresh anonymous participant id.
func NewAnonymousID() string {
	return "anon-" + uuid.NewString()
}

// ResolveIdentity asks provider for the current user and falls back to an
// anonymous identity whose id comes from newID (NewAnonymousID when nil).
// It never fails: a missing provider, a failing one, or no login all yield Anonymous.
func ResolveIdentity(ctx context.Context, provider IdentityProvider, newID func() string) Identity {
	if newID == nil {
		newID = NewAnonymousID
	}
	if provider == nil {
		return Anonymous(newID())
	}
	if err := provider.Init(ctx); err != nil {
		return Anonymous(newID())
	}
	if !provider.IsLoggedIn(ctx) {
		return Anonymous(newID())
	}
	p, err := provider.GetProfile(ctx)
	if err != nil || p.ParticipantID == "" {
		return Anonymous(newID())
	}
	return Authenticated(p)
}
