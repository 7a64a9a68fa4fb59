package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

var (
	ErrMissingField      = errors.New("please fill in all fields")
	ErrDuplicateUsername = errors.New("username already exists")
)

type RegistrationService struct {
	Store store.Store
}

// Register adds a user. No verification code is sent. Username and phone
// are trimmed; the password is stored exactly as given.
func (s *RegistrationService) Register(ctx context.Context, username, password, phone string) (domain.User, error) {
	username = strings.TrimSpace(username)
	phone = strings.TrimSpace(phone)
	if username == "" || password == "" || phone == "" {
		return domain.User{}, ErrMissingField
	}

	u := domain.User{
		Username:  username,
		Password:  password,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}

	err := s.Store.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrDuplicateUsername
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "username", username)
	return u, nil
}
