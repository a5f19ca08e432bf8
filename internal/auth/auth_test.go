package auth

import (
	"context"
	"errors"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier("secret-token")
	ctx := context.Background()

	claims, err := v.Verify(ctx, "secret-token")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "dev" {
		t.Errorf("unexpected subject %s", claims.Subject)
	}

	if _, err := v.Verify(ctx, "wrong"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := v.Verify(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestStaticVerifierEmptyConfiguredToken(t *testing.T) {
	// An unset token must reject everything rather than accept everything.
	v := NewStaticVerifier("")
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
