package app

import (
	"context"

	"quizis-session-service/internal/domain"
)

// UserStore persists registered accounts keyed by email.
type UserStore interface {
	Get(ctx context.Context, email string) (domain.User, bool, error)
	Save(ctx context.Context, user domain.User) error
}

// AuthService is the authentication collaborator. Credentials are a plain
// lookup, matching how the rest of the service treats the user identity.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account. Registering an email twice fails with
// domain.ErrDuplicateRegistration.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	if _, ok, err := a.users.Get(ctx, email); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrDuplicateRegistration
	}
	user := domain.User{Username: username, Email: email, Password: password}
	if err := a.users.Save(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login returns the account matching the credentials or
// domain.ErrInvalidCredentials.
func (a *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, ok, err := a.users.Get(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if !ok || user.Password != password {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
