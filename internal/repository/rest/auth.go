package rest

import (
	"context"
	"errors"

	"medilink-client/internal/domain"
	"medilink-client/internal/repository"
)

var errNoToken = errors.New("backend response carried no token")

type authRepository struct {
	backend Backend
}

func NewAuthRepository(backend Backend) repository.AuthRepository {
	return &authRepository{backend: backend}
}

type tokenResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *authRepository) Register(ctx context.Context, reg *domain.Registration) (string, error) {
	var resp tokenResponse
	if err := r.backend.Post(ctx, "/auth/register", reg, &resp); err != nil {
		return "", err
	}
	// Older auth backends answer registration without signing the user in
	return resp.Token, nil
}

func (r *authRepository) Login(ctx context.Context, creds *domain.Credentials) (string, error) {
	var resp tokenResponse
	if err := r.backend.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}

func (r *authRepository) Validate(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"userId"`
	}
	if err := r.backend.Get(ctx, "/auth/validate", nil, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}
