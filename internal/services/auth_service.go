package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/repo"
	"github.com/lfarias/go-keys-backend/internal/security"
)

// AuthService handles credential checks, account creation, and token
// issuance.
type AuthService struct {
	DB     *gorm.DB
	Tokens *security.TokenManager
}

// NewAuthService wires the auth service to its database and token manager.
func NewAuthService(db *gorm.DB, tokens *security.TokenManager) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

// LoginResult carries the issued access token together with the
// authenticated user's profile.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// RegisterInput is the payload for account creation. Course and Period are
// only meaningful for students.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Course   string
	Period   int
}

// Login verifies the email/password pair and issues an access token.
// Unknown email and wrong password both map onto ErrInvalidCredentials so a
// caller cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Generate(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: *u}, nil
}

// Register creates a new account with a bcrypt-hashed password. The role
// defaults to student when empty; a duplicate email fails with ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return repo.CreateUser(ctx, s.DB, in.Name, email, string(hash), role, in.Course, in.Period)
}

// Profile returns the account behind an authenticated user ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
