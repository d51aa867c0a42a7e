package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cesizen/internal/domain"
)

func newTestJWT(secret string) *JWTService {
	return NewJWTServiceWithStore(secret, 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
}

func TestJWTService_GenerateParseAccess(t *testing.T) {
	svc := newTestJWT("secret")
	user := domain.User{
		ID:          "u1",
		Email:       "user@example.com",
		DisplayName: "Test",
		Role:        domain.RoleAdmin,
	}

	pair, err := svc.GeneratePair(context.Background(), user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != 900 {
		t.Fatalf("unexpected pair: %+v", pair)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || !claims.IsAdmin() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "cesizen" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestJWTService_DefaultRoleIsUser(t *testing.T) {
	svc := newTestJWT("secret")
	pair, err := svc.GeneratePair(context.Background(), domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %q", claims.Role)
	}
}

func TestJWTService_RefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWT("secret")
	pair, err := svc.GeneratePair(ctx, domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	refreshed, err := svc.RefreshPair(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh pair: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatalf("expected refreshed tokens")
	}

	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected old refresh token to be revoked")
	}
}

func TestJWTService_RotateCarriesCurrentRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWT("secret")
	pair, _ := svc.GeneratePair(ctx, domain.User{ID: "u1", Email: "user@example.com"})

	claims, err := svc.ParseRefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	promoted := domain.User{ID: "u1", Email: "user@example.com", Role: domain.RoleAdmin}
	next, err := svc.Rotate(ctx, claims, promoted)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	access, err := svc.ParseAccessToken(next.AccessToken)
	if err != nil || !access.IsAdmin() {
		t.Fatalf("expected admin access token, got %+v %v", access, err)
	}

	if _, err := svc.Rotate(ctx, claims, domain.User{ID: "other"}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for mismatched user, got %v", err)
	}
}

func TestJWTService_RevokeRefreshAndUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWT("secret")
	user := domain.User{ID: "u1", Email: "user@example.com"}

	first, _ := svc.GeneratePair(ctx, user)
	if err := svc.RevokeRefresh(ctx, first.RefreshToken); err != nil {
		t.Fatalf("revoke refresh: %v", err)
	}
	if _, err := svc.RefreshPair(ctx, first.RefreshToken); err == nil {
		t.Fatalf("expected refresh to fail after revoke")
	}

	second, _ := svc.GeneratePair(ctx, user)
	third, _ := svc.GeneratePair(ctx, user)
	if err := svc.RevokeUser(ctx, "u1"); err != nil {
		t.Fatalf("revoke user: %v", err)
	}
	for _, tok := range []string{second.RefreshToken, third.RefreshToken} {
		if _, err := svc.ParseRefreshToken(ctx, tok); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("expected all sessions revoked, got %v", err)
		}
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := newTestJWT("")
	if _, err := svc.GeneratePair(context.Background(), domain.User{ID: "u1"}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
}

func TestJWTService_RejectsTokenTypeMixups(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWT("secret")
	pair, err := svc.GeneratePair(ctx, domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := svc.RefreshPair(ctx, pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for access token used as refresh, got %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token used as access, got %v", err)
	}
}

func signTestClaims(t *testing.T, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := newTestJWT("secret")
	now := time.Now().UTC()
	signed := signTestClaims(t, Claims{
		UserID:    "u1",
		Role:      domain.RoleUser,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	})

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_ExpiredAccessToken(t *testing.T) {
	svc := newTestJWT("secret")
	past := time.Now().UTC().Add(-time.Hour)
	signed := signTestClaims(t, Claims{
		UserID:    "u1",
		Role:      domain.RoleUser,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	})

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_RejectsUnknownRole(t *testing.T) {
	svc := newTestJWT("secret")
	now := time.Now().UTC()
	signed := signTestClaims(t, Claims{
		UserID:    "u1",
		Role:      "ROOT",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for unknown role, got %v", err)
	}
}
