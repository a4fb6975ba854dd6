package auth

import (
	"context"
	"fmt"

	"reviewgate/internal/common"
	"reviewgate/internal/middleware"

	supa "github.com/supabase-community/supabase-go"
)

var _ middleware.TokenVerifier = (*SupabaseVerifier)(nil)

// SupabaseVerifier resolves end-user bearer tokens against Supabase Auth.
// It uses the anon key: the token itself carries the user's authority, and
// verification asks Supabase who the token belongs to rather than decoding
// anything locally.
type SupabaseVerifier struct {
	client *supa.Client
}

// NewSupabaseVerifier creates a new Supabase token verifier.
func NewSupabaseVerifier(supabaseURL, anonKey string) (*SupabaseVerifier, error) {
	client, err := supa.NewClient(supabaseURL, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseVerifier{client: client}, nil
}

// Verify exchanges a bearer token for the verified user ID.
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", common.NewUnauthorizedError("missing bearer token")
	}

	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", common.NewUnauthorizedError("invalid or expired token")
	}

	return user.ID.String(), nil
}
