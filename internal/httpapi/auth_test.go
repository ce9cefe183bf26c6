package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
	"digistock/backend/internal/store/memory"
)

func newTestAuth(t *testing.T, ttl time.Duration) *AuthManager {
	t.Helper()
	return NewAuthManager("0123456789abcdef0123456789abcdef", ttl, memory.New())
}

func TestRegisterLoginParseRoundTrip(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	err := auth.Register(ctx, domain.RegisterRequest{Name: "Maria", Password: "segredo1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Name is normalized to lowercase on registration and login.
	resp, err := auth.Login(ctx, domain.LoginRequest{Name: "MARIA", Password: "segredo1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	actor, err := auth.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if actor.Name != "maria" {
		t.Fatalf("actor = %q, want maria", actor.Name)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{"short password", domain.RegisterRequest{Name: "maria", Password: "123"}},
		{"short name", domain.RegisterRequest{Name: "ab", Password: "segredo1"}},
		{"name with spaces", domain.RegisterRequest{Name: "maria silva", Password: "segredo1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := auth.Register(ctx, tc.req); !errors.Is(err, store.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	if err := auth.Register(ctx, domain.RegisterRequest{Name: "maria", Password: "segredo1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := auth.Register(ctx, domain.RegisterRequest{Name: "Maria", Password: "outra123"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	if err := auth.Register(ctx, domain.RegisterRequest{Name: "maria", Password: "segredo1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongErr := auth.Login(ctx, domain.LoginRequest{Name: "maria", Password: "errada"})
	_, missingErr := auth.Login(ctx, domain.LoginRequest{Name: "ninguem", Password: "errada"})
	if wrongErr == nil || missingErr == nil {
		t.Fatal("expected both logins to fail")
	}
	// Missing user and wrong password must be indistinguishable.
	if wrongErr.Error() != missingErr.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongErr, missingErr)
	}
}

func TestParseTokenExpired(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	if err := auth.Register(ctx, domain.RegisterRequest{Name: "maria", Password: "segredo1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	expiresAt := time.Now().UTC().Add(-time.Minute)
	token, err := auth.sign("maria", expiresAt)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	other := NewAuthManager("ffffffffffffffffffffffffffffffff", time.Hour, memory.New())

	token, err := other.sign("maria", time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}
