package auth

import (
	"context"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
)

type lookupFunc func(token string) (User, error)

type supabaseVerifier struct {
	lookup lookupFunc
}

// NewSupabase builds a Verifier backed by Supabase Auth. Without a configured
// project every token is rejected, which leaves processing anonymous-only.
func NewSupabase(cfg config.AuthConfig) (Verifier, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return &supabaseVerifier{lookup: func(string) (User, error) {
			return User{}, fmt.Errorf("%w: identity provider not configured", ErrInvalidToken)
		}}, nil
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}

	return &supabaseVerifier{lookup: func(token string) (User, error) {
		resp, err := client.Auth.WithToken(token).GetUser()
		if err != nil {
			return User{}, err
		}
		return User{ID: resp.ID.String(), Email: resp.Email}, nil
	}}, nil
}

func (v *supabaseVerifier) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	user, err := v.lookup(token)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if user.ID == "" {
		return User{}, ErrInvalidToken
	}
	return user, nil
}
