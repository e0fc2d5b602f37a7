package service

import (
	"context"
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
)

// UserStore is the account persistence used by the services
type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetWithPermissions(ctx context.Context, id uint) (*models.User, error)
	AddGroup(ctx context.Context, user *models.User, group *models.Group) error
	Delete(ctx context.Context, id uint) error
}

// GroupStore looks up roles
type GroupStore interface {
	GetByName(ctx context.Context, name string) (*models.Group, error)
}

// ProfileStore is the profile persistence used by the services
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	SetRole(ctx context.Context, userID, groupID uint) error
	Update(ctx context.Context, profile *models.Profile) error
}

// DailyRecordStore is the daily record persistence used by the services
type DailyRecordStore interface {
	Create(ctx context.Context, record *models.DailyRecord) error
	ExistsForDate(ctx context.Context, userID uint, date time.Time, excludeID uint) (bool, error)
	GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.DailyRecord, error)
	ListByUserIDPaginated(ctx context.Context, userID uint, filter repository.DailyRecordFilter, page, pageSize int) ([]models.DailyRecord, int64, error)
	Replace(ctx context.Context, record *models.DailyRecord) error
	Delete(ctx context.Context, id, userID uint) error
}

// TokenRevoker tracks revoked refresh tokens
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	_ UserStore        = (*repository.UserRepository)(nil)
	_ GroupStore       = (*repository.GroupRepository)(nil)
	_ ProfileStore     = (*repository.ProfileRepository)(nil)
	_ DailyRecordStore = (*repository.DailyRecordRepository)(nil)
	_ TokenRevoker     = (*repository.TokenBlacklist)(nil)
)
