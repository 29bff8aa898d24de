package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"marketBack/internal/models"
	"marketBack/utils"
)

const minPasswordLength = 8

type UserService struct {
	UserRepo        UserStore
	TokenManager    *utils.Manager
	RefreshTokenTTL time.Duration
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return models.User{}, models.Reject("Name is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, models.Reject("Please enter a valid email address.")
	}
	if len(req.Password) < minPasswordLength {
		return models.User{}, models.Reject("Password must be at least %d characters.", minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.UserRepo.CreateUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	})
	if errors.Is(err, models.ErrDuplicateEmail) {
		return models.User{}, models.Reject("An account with this email already exists.")
	}
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	accessToken, err := s.TokenManager.NewAccessToken(user.ID, user.Role)
	if err != nil {
		return models.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	return s.CreateSession(ctx, user, accessToken)
}

func (s *UserService) CreateSession(ctx context.Context, user models.User, accessToken string) (models.Tokens, error) {
	refreshToken, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	ttl := s.RefreshTokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	session := models.Session{
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(ttl),
	}
	if err := s.UserRepo.SetSession(ctx, user.ID, session); err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh issues a new access token for a valid, unexpired refresh token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Session, string, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Session{}, "", err
	}
	if session.RefreshToken != refreshToken || session.ExpiresAt.Before(time.Now()) {
		return models.Session{}, "", models.ErrInvalidCredentials
	}
	accessToken, err := s.TokenManager.NewAccessToken(session.UserID, session.Role)
	if err != nil {
		return models.Session{}, "", err
	}
	return session, accessToken, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateFCMToken(ctx context.Context, userID int, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Reject("Token is required.")
	}
	return s.UserRepo.UpdateFCMToken(ctx, userID, token)
}
