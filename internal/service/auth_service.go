package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smart-blog-api/internal/model"
	"smart-blog-api/pkg/apierror"
)

const loginFailedMessage = "Invalid email or password"

type AuthService struct {
	users UserStore
	creds *CredentialService
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserStore, creds *CredentialService) *AuthService {
	return &AuthService{users: users, creds: creds, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)

	if email == "" || req.Password == "" || name == "" {
		return model.AuthResponse{}, apierror.BadRequest("email, password and name are required", "")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return model.AuthResponse{}, apierror.BadRequest("Invalid email address", email)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.AuthResponse{}, apierror.Conflict("Email already registered", "")
	case !errors.Is(err, model.ErrUserNotFound):
		return model.AuthResponse{}, err
	}

	hash, err := s.creds.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.AuthResponse{}, apierror.Conflict("Email already registered", "")
		}
		return model.AuthResponse{}, err
	}

	slog.Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// Login never reveals whether the email exists: an unknown address and a
// wrong password produce the same error after the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return model.AuthResponse{}, err
		}
		s.creds.VerifyPassword(req.Password, s.dummyPasswordHash())
		return model.AuthResponse{}, apierror.Unauthorized(loginFailedMessage)
	}

	if !s.creds.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, apierror.Unauthorized(loginFailedMessage)
	}

	return s.issue(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.PublicUser, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return model.PublicUser{}, apierror.BadRequest("Invalid user id", "")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("User not found", "")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) issue(user model.User) (model.AuthResponse, error) {
	token, expiresAt, err := s.creds.IssueToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user.Public(),
	}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.creds.HashPassword(uuid.NewString())
		if err != nil {
			slog.Error("generate dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
