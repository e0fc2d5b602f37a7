package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
)

// DailyRecordService handles a user's daily health records
type DailyRecordService struct {
	records DailyRecordStore
}

// NewDailyRecordService creates a new DailyRecordService
func NewDailyRecordService(records DailyRecordStore) *DailyRecordService {
	return &DailyRecordService{records: records}
}

// ActivityRequest is one physical activity of a record
type ActivityRequest struct {
	ActivityType    models.ActivityType `json:"activity_type" binding:"required,oneof=caminar correr ciclismo natacion gimnasio yoga futbol baile otro"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0,lte=1440"`
}

// DailyRecordRequest creates or fully replaces a record. Omitted counters
// are stored as zero and omitted activities as an empty list.
type DailyRecordRequest struct {
	Date         string               `json:"date" binding:"required,datetime=2006-01-02"`
	Steps        int                  `json:"steps" binding:"gte=0"`
	DistanceKM   float64              `json:"distance_km" binding:"gte=0"`
	CaloriesKcal int                  `json:"calories_kcal" binding:"gte=0"`
	SleepHours   float64              `json:"sleep_hours" binding:"gte=0,lte=24"`
	SleepQuality *models.SleepQuality `json:"sleep_quality" binding:"omitempty,oneof=Mala Regular Buena Excelente"`
	Mood         *int                 `json:"mood" binding:"omitempty,min=1,max=5"`
	HydrationML  int                  `json:"hydration_ml" binding:"gte=0"`
	Activities   []ActivityRequest    `json:"activities" binding:"omitempty,dive"`
}

// ListFilter narrows a record listing to an inclusive date range
type ListFilter struct {
	From *time.Time
	To   *time.Time
}

// Create stores a new record for the user
func (s *DailyRecordService) Create(ctx context.Context, userID uint, req *DailyRecordRequest) (*models.DailyRecordResponse, error) {
	record, err := buildRecord(req)
	if err != nil {
		return nil, err
	}
	record.UserID = userID

	exists, err := s.records.ExistsForDate(ctx, userID, record.Date, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateDate
	}

	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateDate) {
			return nil, ErrDuplicateDate
		}
		return nil, fmt.Errorf("failed to create daily record: %w", err)
	}

	resp := record.ToResponse()
	return &resp, nil
}

// List returns one page of the user's records, newest date first
func (s *DailyRecordService) List(ctx context.Context, userID uint, filter ListFilter, page, pageSize int) ([]models.DailyRecordResponse, int64, error) {
	records, total, err := s.records.ListByUserIDPaginated(ctx, userID, repository.DailyRecordFilter{
		From: filter.From,
		To:   filter.To,
	}, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.DailyRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}
	return responses, total, nil
}

// Get retrieves a record owned by the user
func (s *DailyRecordService) Get(ctx context.Context, userID, recordID uint) (*models.DailyRecordResponse, error) {
	record, err := s.records.GetByIDAndUserID(ctx, recordID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDailyRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	resp := record.ToResponse()
	return &resp, nil
}

// Update replaces every field and activity of a record owned by the user
func (s *DailyRecordService) Update(ctx context.Context, userID, recordID uint, req *DailyRecordRequest) (*models.DailyRecordResponse, error) {
	existing, err := s.records.GetByIDAndUserID(ctx, recordID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDailyRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	record, err := buildRecord(req)
	if err != nil {
		return nil, err
	}
	record.ID = existing.ID
	record.UserID = existing.UserID
	record.CreatedAt = existing.CreatedAt

	if !record.Date.Equal(existing.Date) {
		exists, err := s.records.ExistsForDate(ctx, userID, record.Date, record.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateDate
		}
	}

	if err := s.records.Replace(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateDate) {
			return nil, ErrDuplicateDate
		}
		return nil, fmt.Errorf("failed to update daily record: %w", err)
	}

	resp := record.ToResponse()
	return &resp, nil
}

// Delete removes a record owned by the user
func (s *DailyRecordService) Delete(ctx context.Context, userID, recordID uint) error {
	if err := s.records.Delete(ctx, recordID, userID); err != nil {
		if errors.Is(err, repository.ErrDailyRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	return nil
}

func buildRecord(req *DailyRecordRequest) (*models.DailyRecord, error) {
	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		return nil, newValidationError("date", CodeInvalid, "Formato de fecha inválido. Use AAAA-MM-DD.")
	}

	record := &models.DailyRecord{
		Date:         date,
		Steps:        uint(req.Steps),
		DistanceKM:   req.DistanceKM,
		CaloriesKcal: uint(req.CaloriesKcal),
		SleepHours:   req.SleepHours,
		SleepQuality: req.SleepQuality,
		HydrationML:  uint(req.HydrationML),
		Activities:   make([]models.PhysicalActivity, 0, len(req.Activities)),
	}
	if req.Mood != nil {
		mood := uint8(*req.Mood)
		record.Mood = &mood
	}
	for _, a := range req.Activities {
		record.Activities = append(record.Activities, models.PhysicalActivity{
			ActivityType:    a.ActivityType,
			DurationMinutes: uint(a.DurationMinutes),
		})
	}
	return record, nil
}
