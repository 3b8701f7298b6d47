package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"medilink-client/internal/domain"
	"medilink-client/internal/gateway"
	"medilink-client/internal/logger"
	"medilink-client/internal/repository"
)

type authService struct {
	authRepo repository.AuthRepository
	session  Session
}

func NewAuthService(authRepo repository.AuthRepository, session Session) AuthService {
	return &authService{
		authRepo: authRepo,
		session:  session,
	}
}

func (s *authService) Register(ctx context.Context, reg *domain.Registration) (*domain.Identity, error) {
	logger.EnterMethod("authService.Register", "email", reg.Email, "role", reg.Role)

	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}
	if reg.Role == "" {
		reg.Role = domain.RoleUser
	}

	token, err := s.authRepo.Register(ctx, reg)
	if err != nil {
		if gateway.StatusCode(err) == http.StatusConflict {
			err = fmt.Errorf("email %s is already registered: %w", reg.Email, err)
		}
		logger.ExitMethodWithError("authService.Register", err)
		return nil, err
	}
	if token == "" {
		logger.ExitMethod("authService.Register", "signed_in", false)
		return nil, nil
	}

	identity, err := s.session.Login(ctx, token)
	if err != nil {
		logger.ExitMethodWithError("authService.Register", err)
		return nil, err
	}
	logger.ExitMethod("authService.Register", "user_id", identity.ID)
	return identity, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	logger.EnterMethod("authService.Login", "email", email)

	token, err := s.authRepo.Login(ctx, &domain.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		if code := gateway.StatusCode(err); code == http.StatusUnauthorized || code == http.StatusForbidden {
			err = ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.Login", err)
		return nil, err
	}

	identity, err := s.session.Login(ctx, token)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return nil, fmt.Errorf("login failed: %w", err)
	}
	logger.ExitMethod("authService.Login", "user_id", identity.ID, "role", identity.Role)
	return identity, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

func (s *authService) WhoAmI() *domain.Identity {
	return s.session.Identity()
}

func (s *authService) ValidateRemote(ctx context.Context) (string, error) {
	if s.session.Identity() == nil {
		return "", ErrNotAuthenticated
	}
	return s.authRepo.Validate(ctx)
}
