package auth

import (
	"context"
	"errors"
	"strings"
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Resolve turns an Authorization header into an Identity. It never fails:
// a missing token is Anonymous and a bad one is Rejected. The returned error
// says why a token was rejected and is meant for logging.
func Resolve(ctx context.Context, v Verifier, header string) (Identity, error) {
	token, err := BearerToken(header)
	if errors.Is(err, ErrMissingToken) {
		return Identity{Status: Anonymous}, nil
	}
	if err != nil {
		return Identity{Status: Rejected}, err
	}

	user, err := v.Verify(ctx, token)
	if err != nil {
		return Identity{Status: Rejected}, err
	}
	return Identity{UserID: user.ID, Email: user.Email, Status: Verified}, nil
}
