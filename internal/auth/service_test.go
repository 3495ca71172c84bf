package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/campuschat-server/internal/store"
	"github.com/vovakirdan/campuschat-server/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return NewService(st, jwtConfig)
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, Registration{Username: "ab", Password: "password123"}); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	if _, _, err := svc.Register(ctx, Registration{Username: " ab ", Password: "password123"}); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestRegister_RejectsInvalidPasswordAndRole(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, Registration{Username: "abc", Password: "12345"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, _, err := svc.Register(ctx, Registration{Username: "abc", Password: "123456", Role: "dean"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegister_DefaultsAndDuplicate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, Registration{Username: " alice ", Password: "password123"})
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if user.Username != "alice" || user.Name != "alice" || user.Role != store.RoleStudent {
		t.Fatalf("unexpected user defaults: %+v", user)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != store.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Should collide because the stored username is trimmed.
	if _, _, err := svc.Register(ctx, Registration{Username: "alice", Password: "password123"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, Registration{Username: "prof", Password: "secret99", Name: "Prof. Ada", Role: store.RoleStaff}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "prof", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, err := svc.Login(ctx, "prof", "secret99")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Role != store.RoleStaff || claims.Username != "prof" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_RejectsForeignAudience(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("s"), Issuer: "campuschat", Audience: "web", TTL: time.Minute}
	token, err := GenerateToken(cfg, &store.User{ID: 1, Username: "x", Role: store.RoleStudent})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := *cfg
	other.Audience = "mobile"
	if _, err := ValidateToken(&other, token); err == nil {
		t.Fatalf("expected audience mismatch error")
	}

	expired := *cfg
	expired.TTL = -time.Minute
	token, err = GenerateToken(&expired, &store.User{ID: 1, Username: "x"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatalf("expected expired token error")
	}
}
