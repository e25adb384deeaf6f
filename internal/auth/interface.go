package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// User is an identity confirmed by the identity provider.
type User struct {
	ID    string `json:"uid"`
	Email string `json:"email"`
}

// Verifier checks an identity token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// Status records how an Identity was resolved.
type Status int

const (
	// Anonymous means no token was supplied.
	Anonymous Status = iota
	// Verified means the token was accepted by the identity provider.
	Verified
	// Rejected means a token was supplied but could not be verified.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// Identity is the caller of a request. Only a Verified identity carries a
// UserID.
type Identity struct {
	UserID string
	Email  string
	Status Status
}

func (i Identity) Verified() bool {
	return i.Status == Verified && i.UserID != ""
}
