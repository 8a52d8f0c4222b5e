package auth

import (
	"errors"

	"github.com/talentloop/talentloop-server/internal/storage/sqlite"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// ErrInvalidCredentials is returned on any login failure. Unknown email and
// wrong password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the account persistence surface the service needs
type UserStore interface {
	GetByEmail(email string) (*sqlite.UserRecord, error)
	UpdatePassword(id int64, passwordHash string, mustReset bool) error
}

// LoginResult carries the issued token and the authenticated account
type LoginResult struct {
	Token             string `json:"token"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	MustResetPassword bool   `json:"must_reset_password"`
}

// Service authenticates users and manages their passwords
type Service struct {
	users  UserStore
	tokens *JWTManager
	logger *logger.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, tokens *JWTManager, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: log.Named("auth"),
	}
}

// Login verifies the password and issues a JWT
func (s *Service) Login(email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.logger.Warn("Failed login attempt", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:             token,
		Email:             user.Email,
		Name:              user.Name,
		Role:              user.Role,
		MustResetPassword: user.MustResetPassword,
	}, nil
}

// ResetPassword replaces the password of the account named in a valid
// bearer token and clears the must-reset flag
func (s *Service) ResetPassword(token, newPassword string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(claims.Email)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(user.ID, hash, false); err != nil {
		return err
	}

	s.logger.Info("Password reset", logger.String("email", user.Email))
	return nil
}
