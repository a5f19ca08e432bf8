// Package auth verifies caller identity for the API. Production deployments
// validate OIDC ID tokens against the enterprise identity provider; dev
// deployments can use a static API token instead.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ErrInvalidToken is returned when a presented token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity extracted from a verified token.
type Claims struct {
	Subject string
	Email   string
}

// Verifier validates a bearer token and returns the caller's claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// OIDCVerifier validates ID tokens issued by an OIDC provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider configuration from the issuer URL.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}

	return &Claims{Subject: idToken.Subject, Email: payload.Email}, nil
}

// StaticVerifier accepts a single pre-shared token. Only for dev and test
// deployments where no identity provider is available.
type StaticVerifier struct {
	token string
}

// NewStaticVerifier creates a verifier for the given pre-shared token.
func NewStaticVerifier(token string) *StaticVerifier {
	return &StaticVerifier{token: token}
}

func (v *StaticVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	if v.token == "" || subtle.ConstantTimeCompare([]byte(v.token), []byte(rawToken)) != 1 {
		return nil, ErrInvalidToken
	}
	return &Claims{Subject: "dev"}, nil
}
