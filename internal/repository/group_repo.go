package repository

import (
	"context"
	"errors"

	"github.com/edia-health/edia-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound = errors.New("group not found")
)

// GroupRepository handles groups (roles) and their permissions
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// GetByName retrieves a group by its unique name
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, result.Error
	}
	return &group, nil
}

// EnsureGroups creates the groups and permissions in seed if missing and sets
// each seeded group's permission set to exactly the listed codenames.
func (r *GroupRepository) EnsureGroups(ctx context.Context, seed map[string][]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, codenames := range seed {
			group := models.Group{Name: name}
			if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
				return err
			}

			perms := make([]models.Permission, 0, len(codenames))
			for _, codename := range codenames {
				perm := models.Permission{Codename: codename}
				err := tx.Where(models.Permission{Codename: codename}).
					Attrs(models.Permission{Name: codename}).
					FirstOrCreate(&perm).Error
				if err != nil {
					return err
				}
				perms = append(perms, perm)
			}

			if err := tx.Model(&group).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}
