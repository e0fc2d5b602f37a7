package service

import (
	"context"
	"errors"
	"log"

	"github.com/edia-health/edia-backend/internal/config"
	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
)

// UserService handles administrative operations on accounts
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Capabilities returns the permission codenames granted to the user through
// its groups and its profile role. The user must be loaded with
// Groups.Permissions and Profile.Role.Permissions.
func Capabilities(user *models.User) map[string]struct{} {
	caps := make(map[string]struct{})
	for _, g := range user.Groups {
		for _, p := range g.Permissions {
			caps[p.Codename] = struct{}{}
		}
	}
	if user.Profile != nil && user.Profile.Role != nil {
		for _, p := range user.Profile.Role.Permissions {
			caps[p.Codename] = struct{}{}
		}
	}
	return caps
}

// HasPermission reports whether the user holds the codename
func HasPermission(user *models.User, codename string) bool {
	_, ok := Capabilities(user)[codename]
	return ok
}

// DeleteUser deletes targetID with everything it owns, provided the caller
// may delete users. Permissions are reloaded from the store rather than
// trusted from the token.
func (s *UserService) DeleteUser(ctx context.Context, callerID, targetID uint) error {
	caller, err := s.users.GetWithPermissions(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}

	if !HasPermission(caller, config.PermDeleteUser) {
		log.Printf("[UserService] WARN: user id=%d attempted to delete user id=%d without permission", callerID, targetID)
		return ErrForbidden
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Printf("[UserService] user id=%d deleted by user id=%d", targetID, callerID)
	return nil
}
