package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	service := NewJWTService("test-secret", "backoffice", nil)

	pair, err := service.GenerateTokenPair("user-1", "acme", []string{"operator"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pair.TokenType != "Bearer" || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("pair = %+v", pair)
	}

	claims, err := service.ValidateToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.TenantID != "acme" || claims.TokenType != "access" {
		t.Fatalf("claims = %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "operator" {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", "backoffice", nil)
	verifier := NewJWTService("secret-b", "backoffice", nil)

	pair, err := issuer.GenerateTokenPair("user-1", "acme", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("token with wrong signature accepted")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	service := NewJWTService("test-secret", "backoffice", nil)
	service.accessExpiry = -time.Minute

	pair, err := service.GenerateTokenPair("user-1", "acme", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := service.ValidateToken(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestValidateRejectsUnsignedAlgorithm(t *testing.T) {
	service := NewJWTService("test-secret", "backoffice", nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &TokenClaims{UserID: "user-1", TenantID: "acme"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := service.ValidateToken(context.Background(), raw); err == nil {
		t.Fatal("alg=none token accepted")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	service := NewJWTService("test-secret", "backoffice", nil)

	pair, err := service.GenerateTokenPair("user-1", "acme", []string{"operator"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	fresh, err := service.RefreshAccessToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := service.ValidateToken(context.Background(), fresh.AccessToken)
	if err != nil {
		t.Fatalf("validate refreshed: %v", err)
	}
	if claims.TenantID != "acme" {
		t.Fatalf("claims = %+v", claims)
	}

	// An access token must not be usable for refresh.
	if _, err := service.RefreshAccessToken(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("access token accepted for refresh")
	}
}

func TestExtractTokenFromBearer(t *testing.T) {
	if got := ExtractTokenFromBearer("Bearer abc123"); got != "abc123" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractTokenFromBearer("abc123"); got != "abc123" {
		t.Fatalf("got %q", got)
	}
}
