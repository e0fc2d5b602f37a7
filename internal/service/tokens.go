package service

import (
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims are embedded in access tokens
type AccessClaims struct {
	UserID    uint     `json:"user_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      *string  `json:"role"`
	Groups    []string `json:"groups"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// RefreshClaims are embedded in refresh tokens
type RefreshClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token pair
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// BuildAccessClaims maps an account and its profile to the identity claims
// of an access token. Registered claims (exp, jti, ...) are left empty.
func BuildAccessClaims(user *models.User, profile *models.Profile) AccessClaims {
	claims := AccessClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Groups:    user.GroupNames(),
		TokenType: TokenTypeAccess,
	}
	if profile != nil && profile.Role != nil {
		role := profile.Role.Name
		claims.Role = &role
	}
	return claims
}

func (s *AuthService) registered(subject uint, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.jwtConfig.Issuer,
		Subject:   uintToString(subject),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *AuthService) signAccess(user *models.User) (string, error) {
	claims := BuildAccessClaims(user, user.Profile)
	claims.RegisteredClaims = s.registered(user.ID, s.jwtConfig.AccessTTL)
	return s.sign(&claims)
}

func (s *AuthService) signRefresh(userID uint) (string, error) {
	claims := RefreshClaims{
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: s.registered(userID, s.jwtConfig.RefreshTTL),
	}
	return s.sign(&claims)
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.signAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.jwtConfig.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ValidateAccessToken validates an access token and returns its claims
func (s *AuthService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
