package repository

import (
	"context"
	"errors"

	"github.com/edia-health/edia-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithProfile inserts the user and its empty profile in one transaction.
// A lost uniqueness race is reported as ErrUsernameTaken or ErrEmailTaken.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Groups", "Profile", "DailyRecords").Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		if err := tx.Omit("Role").Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "uidx_users_email" {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return err
}

// ExistsByUsername checks whether the username is registered
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks whether the email is registered
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error
	return count > 0, err
}

// GetByID retrieves a user with groups and profile role
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Preload("Groups").Preload("Profile.Role"), "id = ?", id)
}

// GetByUsername retrieves a user with groups and profile role
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Preload("Groups").Preload("Profile.Role"), "username = ?", username)
}

// GetWithPermissions retrieves a user with the permissions of its groups and role
func (r *UserRepository) GetWithPermissions(ctx context.Context, id uint) (*models.User, error) {
	q := r.db.WithContext(ctx).
		Preload("Groups.Permissions").
		Preload("Profile.Role.Permissions")
	return r.first(q, "id = ?", id)
}

func (r *UserRepository) first(q *gorm.DB, cond string, arg interface{}) (*models.User, error) {
	var user models.User
	result := q.Where(cond, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// AddGroup appends the group to the user's group set
func (r *UserRepository) AddGroup(ctx context.Context, user *models.User, group *models.Group) error {
	return r.db.WithContext(ctx).Model(user).Association("Groups").Append(group)
}

// Delete removes the user and everything it owns
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		recordIDs := tx.Model(&models.DailyRecord{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("daily_record_id IN (?)", recordIDs).Delete(&models.PhysicalActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.DailyRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Groups").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
