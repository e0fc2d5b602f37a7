package repository

import (
	"context"
	"errors"
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrDailyRecordNotFound = errors.New("daily record not found")
	ErrDuplicateDate       = errors.New("daily record already exists for date")
)

// DailyRecordFilter narrows a listing to a date range (inclusive, optional)
type DailyRecordFilter struct {
	From *time.Time
	To   *time.Time
}

// DailyRecordRepository handles daily record data access
type DailyRecordRepository struct {
	db *gorm.DB
}

// NewDailyRecordRepository creates a new DailyRecordRepository
func NewDailyRecordRepository(db *gorm.DB) *DailyRecordRepository {
	return &DailyRecordRepository{db: db}
}

// Create inserts a record with its activities
func (r *DailyRecordRepository) Create(ctx context.Context, record *models.DailyRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if _, ok := uniqueViolation(err); ok {
		return ErrDuplicateDate
	}
	return err
}

// ExistsForDate checks whether the user already has a record on date,
// ignoring the record with excludeID (0 excludes nothing)
func (r *DailyRecordRepository) ExistsForDate(ctx context.Context, userID uint, date time.Time, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.DailyRecord{}).
		Where("user_id = ? AND date = ?", userID, date)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// GetByIDAndUserID retrieves a record owned by the user
func (r *DailyRecordRepository) GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.DailyRecord, error) {
	var record models.DailyRecord
	result := r.db.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDailyRecordNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}

// ListByUserIDPaginated retrieves a user's records, newest date first
func (r *DailyRecordRepository) ListByUserIDPaginated(ctx context.Context, userID uint, filter DailyRecordFilter, page, pageSize int) ([]models.DailyRecord, int64, error) {
	var records []models.DailyRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&models.DailyRecord{}).Where("user_id = ?", userID)
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}

	// Count total
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated results
	offset := (page - 1) * pageSize
	result := q.
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&records)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return records, total, nil
}

// Replace overwrites the record's columns and swaps its activities for
// record.Activities
func (r *DailyRecordRepository) Replace(ctx context.Context, record *models.DailyRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("daily_record_id = ?", record.ID).Delete(&models.PhysicalActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Activities").Save(record).Error; err != nil {
			return err
		}
		for i := range record.Activities {
			record.Activities[i].ID = 0
			record.Activities[i].DailyRecordID = record.ID
		}
		if len(record.Activities) > 0 {
			if err := tx.Create(&record.Activities).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if _, ok := uniqueViolation(err); ok {
		return ErrDuplicateDate
	}
	return err
}

// Delete removes a record owned by the user together with its activities
func (r *DailyRecordRepository) Delete(ctx context.Context, id, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.DailyRecord
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDailyRecordNotFound
			}
			return err
		}
		if err := tx.Where("daily_record_id = ?", record.ID).Delete(&models.PhysicalActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
}
