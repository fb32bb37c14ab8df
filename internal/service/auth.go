package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/store"
)

var ErrUnauthorized = errors.New("invalid credentials")

type AuthService interface {
	// AuthenticateAPIKey resolves the active user or bot owning apiKey.
	AuthenticateAPIKey(ctx context.Context, apiKey string) (*model.User, error)
	// AuthenticateBasic checks an email:api_key pair.
	AuthenticateBasic(ctx context.Context, email, apiKey string) (*model.User, error)
}

type authService struct {
	users store.UserStore
}

func NewAuthService(users store.UserStore) AuthService {
	return &authService{users: users}
}

func (s *authService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	if apiKey == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up api key: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *authService) AuthenticateBasic(ctx context.Context, email, apiKey string) (*model.User, error) {
	user, err := s.AuthenticateAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(user.Email)), []byte(strings.ToLower(email))) != 1 {
		return nil, ErrUnauthorized
	}
	return user, nil
}
