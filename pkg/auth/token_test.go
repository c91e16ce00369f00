package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andesgear/tienda-backend/pkg/config"
)

func TestMintAndParseStaffToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "tienda",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	staffID := uuid.New()

	token, err := MintStaffToken(cfg, now, StaffTokenPayload{StaffID: staffID, Role: StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	claims, err := ParseStaffToken(cfg, token)
	if err != nil {
		t.Fatalf("parse staff token: %v", err)
	}

	if claims.StaffID != staffID {
		t.Fatalf("expected staff_id %s, got %s", staffID, claims.StaffID)
	}
	if claims.Role != StaffRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseStaffTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "tienda",
		ExpirationMinutes: 10,
	}

	token, err := MintStaffToken(cfg, time.Now(), StaffTokenPayload{StaffID: uuid.New(), Role: StaffRoleOperator})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	if _, err := ParseStaffToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseStaffTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "tienda",
		ExpirationMinutes: 15,
	}

	token, err := MintStaffToken(cfg, time.Now().Add(-time.Hour), StaffTokenPayload{StaffID: uuid.New(), Role: StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	_, err = ParseStaffToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintStaffTokenInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "tienda",
		ExpirationMinutes: 5,
	}

	if _, err := MintStaffToken(cfg, time.Now(), StaffTokenPayload{StaffID: uuid.New(), Role: "intern"}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
