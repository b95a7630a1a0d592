package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	svc := NewAuthService(users, newFakeSessionStore(), zerolog.Nop(),
		"test-secret", 15*time.Minute, 24*time.Hour, 4)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name: "Bob", Email: "bob@test", Password: "secret1", Role: "examiner",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.RoleExaminer {
		t.Errorf("role = %s, want examiner", user.Role)
	}
	if user.PasswordHash == "secret1" {
		t.Fatal("password stored in plain text")
	}

	pair, err := svc.Login(ctx, &model.LoginRequest{Email: "bob@test", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair incomplete")
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleExaminer {
		t.Errorf("claims = %+v, want user %s examiner", claims, user.ID)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)

	if _, err := svc.Register(ctx, &model.RegisterRequest{
		Name: "Bob", Email: "bob@test", Password: "secret1",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "bob@test", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@test", Password: "secret1"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		for _, u := range users.users {
			u.IsActive = false
		}
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "bob@test", Password: "secret1"})
		if !errors.Is(err, ErrAccountInactive) {
			t.Errorf("err = %v, want ErrAccountInactive", err)
		}
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := svc.Register(ctx, &model.RegisterRequest{
			Name: "Bob Again", Email: "bob@test", Password: "secret2",
		})
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("err = %v, want ErrEmailTaken", err)
		}
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	if _, err := svc.Register(ctx, &model.RegisterRequest{
		Name: "Bob", Email: "bob@test", Password: "secret1",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := svc.Login(ctx, &model.LoginRequest{Email: "bob@test", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old token is revoked after one use.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("reused token err = %v, want ErrInvalidRefresh", err)
	}

	// The new one still works.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Errorf("rotated token rejected: %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	if _, err := svc.Register(ctx, &model.RegisterRequest{
		Name: "Bob", Email: "bob@test", Password: "secret1",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := svc.Login(ctx, &model.LoginRequest{Email: "bob@test", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("post-logout refresh err = %v, want ErrInvalidRefresh", err)
	}
}
