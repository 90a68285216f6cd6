package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

func newTestAuthService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAuthService(cfg, client), mr
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	hash, err := svc.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := svc.CheckPassword(hash, "hunter2hunter2"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestGenerateTokenRegistersSession(t *testing.T) {
	svc, mr := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("claims user ID = %s, want %s", claims.UserID, userID)
	}

	if !mr.Exists("login:" + userID.String()) {
		t.Fatal("expected session key in redis")
	}
	if err := svc.ValidateSession(ctx, userID, claims.ID); err != nil {
		t.Fatalf("fresh session rejected: %v", err)
	}
}

func TestNewLoginInvalidatesPreviousToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	firstClaims, err := svc.ValidateToken(first)
	if err != nil {
		t.Fatalf("validate first token: %v", err)
	}

	if _, err := svc.GenerateToken(ctx, userID); err != nil {
		t.Fatalf("second token: %v", err)
	}

	if err := svc.ValidateSession(ctx, userID, firstClaims.ID); !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("stale session: got %v, want ErrSessionInvalidated", err)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	svc, mr := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, _ := svc.ValidateToken(token)

	if err := svc.Logout(ctx, userID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if mr.Exists("login:" + userID.String()) {
		t.Fatal("session key should be gone after logout")
	}
	if err := svc.ValidateSession(ctx, userID, claims.ID); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("after logout: got %v, want ErrNoActiveSession", err)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
