package auth

import (
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
)

// Repository defines the user lookups the auth service needs.
type Repository interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
}

// Service performs authentication-related business logic.
type Service struct {
	repo   Repository
	tokens TokenGenerator
	logger *slog.Logger
}

func NewService(repo Repository, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate verifies credentials and issues an access token.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login for unknown email", "email", dto.Email)
		return nil, ErrInvalidCredentials
	}
	if !row.IsActive {
		s.logger.Warn("login for inactive user", "user_id", row.ID)
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login with wrong password", "user_id", row.ID)
		return nil, ErrInvalidCredentials
	}

	user := &User{ID: row.ID, Email: row.Email, Name: row.Name, Role: row.Role}
	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", row.ID)
		return nil, err
	}

	s.logger.Info("user authenticated", "user_id", row.ID, "role", row.Role)
	return &LoginResponse{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// ResolveToken validates an access token and loads the current user state,
// so deactivated accounts lose access before their token expires.
func (s *Service) ResolveToken(tokenString string) (*User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !row.IsActive {
		return nil, ErrUserInactive
	}

	return &User{ID: row.ID, Email: row.Email, Name: row.Name, Role: row.Role}, nil
}
