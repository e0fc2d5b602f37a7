package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/repository"
)

const maxWeightDecimals = 2

// OnboardingService manages the first-run survey stored on the profile
type OnboardingService struct {
	profiles ProfileStore
	now      func() time.Time
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(profiles ProfileStore) *OnboardingService {
	return &OnboardingService{
		profiles: profiles,
		now:      time.Now,
	}
}

// OnboardingRequest is a partial update of the survey fields.
// A field that is absent or null leaves the stored value unchanged.
type OnboardingRequest struct {
	DateOfBirth    *string               `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	HeightCM       *uint                 `json:"height_cm" binding:"omitempty,gt=0,lte=300"`
	WeightKG       *float64              `json:"weight_kg" binding:"omitempty,gt=0,lt=10000"`
	Gender         *models.Gender        `json:"gender" binding:"omitempty,oneof=M F O"`
	ActivityLevel  *models.ActivityLevel `json:"activity_level" binding:"omitempty,oneof=sedentario ligero moderado activo muy_activo"`
	SleepHours     *float64              `json:"sleep_hours" binding:"omitempty,gte=0,lte=24"`
	BedTime        *string               `json:"bed_time" binding:"omitempty,datetime=15:04"`
	WakeTime       *string               `json:"wake_time" binding:"omitempty,datetime=15:04"`
	WakesUpAtNight *bool                 `json:"wakes_up_at_night"`
}

// Get returns the caller's profile projection, or nil when the profile row
// does not exist
func (s *OnboardingService) Get(ctx context.Context, userID uint) (*models.ProfileResponse, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile.ToResponse(), nil
}

// Submit applies the survey answers and marks the profile as onboarded
func (s *OnboardingService) Submit(ctx context.Context, userID uint, req *OnboardingRequest) (*models.ProfileResponse, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := s.apply(profile, req); err != nil {
		return nil, err
	}
	profile.Onboarded = true

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Printf("[OnboardingService] profile of user id=%d onboarded", userID)
	return profile.ToResponse(), nil
}

func (s *OnboardingService) apply(profile *models.Profile, req *OnboardingRequest) error {
	if req.DateOfBirth != nil {
		dob, err := time.Parse(models.DateLayout, *req.DateOfBirth)
		if err != nil {
			return newValidationError("date_of_birth", CodeInvalid, "Formato de fecha inválido. Use AAAA-MM-DD.")
		}
		if dob.After(today(s.now())) {
			return newValidationError("date_of_birth", CodeFuture, "La fecha de nacimiento no puede estar en el futuro.")
		}
		profile.DateOfBirth = &dob
	}
	if req.WeightKG != nil {
		if decimalPlaces(*req.WeightKG) > maxWeightDecimals {
			return newValidationError("weight_kg", CodePrecision, "El peso admite como máximo 2 decimales.")
		}
		profile.WeightKG = req.WeightKG
	}
	if req.HeightCM != nil {
		profile.HeightCM = req.HeightCM
	}
	if req.Gender != nil {
		profile.Gender = req.Gender
	}
	if req.ActivityLevel != nil {
		profile.ActivityLevel = req.ActivityLevel
	}
	if req.SleepHours != nil {
		profile.SleepHours = req.SleepHours
	}
	if req.BedTime != nil {
		profile.BedTime = req.BedTime
	}
	if req.WakeTime != nil {
		profile.WakeTime = req.WakeTime
	}
	if req.WakesUpAtNight != nil {
		profile.WakesUpAtNight = *req.WakesUpAtNight
	}
	return nil
}

// today truncates t to its calendar date in UTC, matching how dates are parsed
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}
