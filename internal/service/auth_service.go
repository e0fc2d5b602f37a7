package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/edia-health/edia-backend/internal/config"
	"github.com/edia-health/edia-backend/internal/metrics"
	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
	"github.com/edia-health/edia-backend/pkg/crypto"
)

const minPasswordLength = 8

// bcrypt refuses input longer than 72 bytes
const maxPasswordBytes = 72

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	users       UserStore
	groups      GroupStore
	profiles    ProfileStore
	revoked     TokenRevoker
	jwtConfig   config.JWTConfig
	defaultRole string
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	groups GroupStore,
	profiles ProfileStore,
	revoked TokenRevoker,
	jwtConfig config.JWTConfig,
	defaultRole string,
) *AuthService {
	return &AuthService{
		users:       users,
		groups:      groups,
		profiles:    profiles,
		revoked:     revoked,
		jwtConfig:   jwtConfig,
		defaultRole: defaultRole,
		now:         time.Now,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	TokenPair
	User models.LoginUser `json:"user"`
}

// RefreshResponse is returned by a successful refresh; Refresh is only set
// when refresh tokens rotate
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Register validates and creates a new account with its profile, then
// attaches the default role when it exists
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if err := s.validateRegistration(ctx, username, email, req.Password, req.Password2); err != nil {
		metrics.RecordAuthEvent("register", "invalid")
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}

	if err := s.users.CreateWithProfile(ctx, user, &models.Profile{}); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			metrics.RecordAuthEvent("register", "invalid")
			return nil, usernameTaken()
		case errors.Is(err, repository.ErrEmailTaken):
			metrics.RecordAuthEvent("register", "invalid")
			return nil, emailTaken()
		}
		metrics.RecordAuthEvent("register", "error")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.assignDefaultRole(ctx, user)

	metrics.RecordAuthEvent("register", "success")
	log.Printf("[AuthService] registered user id=%d", user.ID)
	return user, nil
}

func (s *AuthService) validateRegistration(ctx context.Context, username, email, password, password2 string) error {
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return usernameTaken()
	}

	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return emailTaken()
	}

	return ValidatePassword(password, password2)
}

// ValidatePassword applies the password rules in order: confirmation match,
// minimum length, maximum byte length, at least one digit
func ValidatePassword(password, password2 string) error {
	if password != password2 {
		return newValidationError("password", CodeMismatch, "Las contraseñas no coinciden.")
	}
	if len([]rune(password)) < minPasswordLength {
		return newValidationError("password", CodeTooShort, "La contraseña debe tener al menos 8 caracteres.")
	}
	if len(password) > maxPasswordBytes {
		return newValidationError("password", CodeTooLong, "La contraseña no puede superar los 72 bytes.")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return newValidationError("password", CodeNoDigit, "La contraseña debe contener al menos un número.")
	}
	return nil
}

func usernameTaken() error {
	return newValidationError("username", CodeUnique, "Este nombre de usuario ya está en uso.")
}

func emailTaken() error {
	return newValidationError("email", CodeUnique, "Este email ya está registrado.")
}

// assignDefaultRole never fails the registration: the account exists
// already, so problems are only logged.
func (s *AuthService) assignDefaultRole(ctx context.Context, user *models.User) {
	group, err := s.groups.GetByName(ctx, s.defaultRole)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			log.Printf("[AuthService] WARN: group %q does not exist, user id=%d created without a role", s.defaultRole, user.ID)
			return
		}
		log.Printf("[AuthService] ERROR: looking up group %q for user id=%d: %v", s.defaultRole, user.ID, err)
		return
	}

	if err := s.users.AddGroup(ctx, user, group); err != nil {
		log.Printf("[AuthService] ERROR: adding user id=%d to group %q: %v", user.ID, group.Name, err)
		return
	}
	user.Groups = append(user.Groups, *group)

	if err := s.profiles.SetRole(ctx, user.ID, group.ID); err != nil {
		log.Printf("[AuthService] ERROR: setting role %q on profile of user id=%d: %v", group.Name, user.ID, err)
		return
	}
	if user.Profile != nil {
		user.Profile.RoleID = &group.ID
		user.Profile.Role = group
	}
}

// Login authenticates a user and returns a token pair with the user summary.
// Unknown usernames and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.BurnPasswordCheck(req.Password)
			metrics.RecordAuthEvent("login", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		metrics.RecordAuthEvent("login", "failure")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	metrics.RecordAuthEvent("login", "success")
	return &LoginResponse{
		TokenPair: *pair,
		User:      user.LoginView(),
	}, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		metrics.RecordAuthEvent("refresh", "failure")
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		metrics.RecordAuthEvent("refresh", "failure")
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.RecordAuthEvent("refresh", "failure")
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.signAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	resp := &RefreshResponse{Access: access}

	if s.jwtConfig.RotateRefresh {
		if err := s.revoke(ctx, claims); err != nil {
			return nil, err
		}
		if resp.Refresh, err = s.signRefresh(user.ID); err != nil {
			return nil, fmt.Errorf("failed to issue refresh token: %w", err)
		}
	}

	metrics.RecordAuthEvent("refresh", "success")
	return resp, nil
}

// Logout revokes a refresh token belonging to userID
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return ErrInvalidToken
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	metrics.RecordAuthEvent("logout", "success")
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *RefreshClaims) error {
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Me returns the login view of the user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.LoginUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	view := user.LoginView()
	return &view, nil
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
