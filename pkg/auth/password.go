package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/containercalc/containercalc/pkg/logger"
	"github.com/containercalc/containercalc/pkg/token"
)

// PasswordResetTokenPayload contains the data encoded in password reset tokens.
type PasswordResetTokenPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Subject  string `json:"sub"`
	ExpireAt int64  `json:"exp"`
}

// PasswordResetRequest contains data needed to deliver a password reset link.
type PasswordResetRequest struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Service provides password-based authentication.
type Service struct {
	storage       Storage
	tokenSecret   string
	bcryptCost    int
	logger        *slog.Logger
	resetTokenTTL time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithResetTokenTTL sets the TTL for password reset tokens.
func WithResetTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.resetTokenTTL = ttl }
}

// NewService creates a password authentication service.
func NewService(storage Storage, tokenSecret string, opts ...Option) *Service {
	if storage == nil {
		panic("auth: storage is required")
	}
	if tokenSecret == "" {
		panic("auth: token secret is required")
	}

	s := &Service{
		storage:       storage,
		tokenSecret:   tokenSecret,
		bcryptCost:    bcrypt.DefaultCost,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		resetTokenTTL: time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates a new user with email and password.
func (s *Service) Register(ctx context.Context, email, password string, profile Profile) (*User, error) {
	email = normalizeEmail(email)

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, errors.Join(ErrInvalidEmail, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      strings.TrimSpace(profile.Name),
		Company:   strings.TrimSpace(profile.Company),
		CreatedAt: time.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.storage.StorePasswordHash(ctx, user.ID, hash); err != nil {
		// Roll back the user record so a retry with the same email succeeds.
		if deleteErr := s.storage.DeleteUser(ctx, user.ID); deleteErr != nil {
			s.logger.Error("failed to cleanup user after password save failure",
				logger.UserID(user.ID.String()),
				logger.Error(deleteErr),
				logger.Component("auth"),
			)
		}
		return nil, fmt.Errorf("failed to save password: %w", err)
	}

	return user, nil
}

// Authenticate verifies email and password and returns the user if valid.
// Any failure maps to ErrInvalidCredentials to prevent user enumeration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.storage.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser returns the user for the given id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.storage.GetUserByID(ctx, id)
}

// ForgotPassword generates a password reset token for the given email.
// Callers should present the same response whether or not the email exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*PasswordResetRequest, error) {
	email = normalizeEmail(email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	payload := PasswordResetTokenPayload{
		ID:       user.ID.String(),
		Email:    email,
		Subject:  SubjectPasswordReset,
		ExpireAt: expiresAt.Unix(),
	}

	tok, err := token.Generate(payload, s.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	return &PasswordResetRequest{
		Email:     email,
		Token:     tok,
		ExpiresAt: expiresAt,
	}, nil
}

// ResetPassword sets a new password using a valid reset token.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (*User, error) {
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	payload, err := token.Parse[PasswordResetTokenPayload](resetToken, s.tokenSecret)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if payload.Subject != SubjectPasswordReset {
		return nil, ErrTokenInvalid
	}
	if time.Now().Unix() > payload.ExpireAt {
		return nil, ErrTokenExpired
	}

	userID, err := uuid.Parse(payload.ID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return user, nil
}

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

func validatePassword(password string) error {
	if err := validation.Validate(password,
		validation.Required,
		validation.Length(minPasswordLength, maxPasswordLength),
	); err != nil {
		return errors.Join(ErrWeakPassword, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
