package app_test

import (
	"context"
	"errors"
	"testing"

	"quizis-session-service/internal/app"
	"quizis-session-service/internal/domain"
	"quizis-session-service/internal/infra/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := app.NewAuthService(memory.NewUserStore())

	user, err := auth.Register(ctx, "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	logged, err := auth.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.Email != "alice@example.com" {
		t.Fatalf("unexpected login result: %+v", logged)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := app.NewAuthService(memory.NewUserStore())

	if _, err := auth.Register(ctx, "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := auth.Register(ctx, "alice2", "alice@example.com", "other")
	if !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := app.NewAuthService(memory.NewUserStore())

	if _, err := auth.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	if _, err := auth.Register(ctx, "bob", "bob@example.com", "right"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := auth.Login(ctx, "bob@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}
