package models

import (
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// SleepQuality is the subjective sleep rating of a day
type SleepQuality string

const (
	SleepBad       SleepQuality = "Mala"
	SleepFair      SleepQuality = "Regular"
	SleepGood      SleepQuality = "Buena"
	SleepExcellent SleepQuality = "Excelente"
)

// ActivityType enumerates the physical activities a record can hold
type ActivityType string

const (
	ActivityWalking  ActivityType = "caminar"
	ActivityRunning  ActivityType = "correr"
	ActivityCycling  ActivityType = "ciclismo"
	ActivitySwimming ActivityType = "natacion"
	ActivityGym      ActivityType = "gimnasio"
	ActivityYoga     ActivityType = "yoga"
	ActivityFootball ActivityType = "futbol"
	ActivityDance    ActivityType = "baile"
	ActivityOther    ActivityType = "otro"
)

// DailyRecord is a per-user, per-date health snapshot
type DailyRecord struct {
	ID           uint          `gorm:"primaryKey"`
	UserID       uint          `gorm:"not null;uniqueIndex:uidx_daily_records_user_date"`
	Date         time.Time     `gorm:"type:date;not null;uniqueIndex:uidx_daily_records_user_date;index"`
	Steps        uint          `gorm:"not null;default:0"`
	DistanceKM   float64       `gorm:"type:decimal(8,2);not null;default:0"`
	CaloriesKcal uint          `gorm:"not null;default:0"`
	SleepHours   float64       `gorm:"type:decimal(4,2);not null;default:0"`
	SleepQuality *SleepQuality `gorm:"size:10"`
	Mood         *uint8
	HydrationML  uint `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relations
	Activities []PhysicalActivity `gorm:"foreignKey:DailyRecordID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for DailyRecord model
func (DailyRecord) TableName() string {
	return "daily_records"
}

// PhysicalActivity is one activity logged inside a DailyRecord
type PhysicalActivity struct {
	ID              uint         `gorm:"primaryKey"`
	DailyRecordID   uint         `gorm:"index;not null"`
	ActivityType    ActivityType `gorm:"size:20;not null"`
	DurationMinutes uint         `gorm:"not null"`
}

// TableName specifies the table name for PhysicalActivity model
func (PhysicalActivity) TableName() string {
	return "physical_activities"
}

// PhysicalActivityResponse is the response structure for an activity
type PhysicalActivityResponse struct {
	ID              uint         `json:"id"`
	ActivityType    ActivityType `json:"activity_type"`
	DurationMinutes uint         `json:"duration_minutes"`
}

// DailyRecordResponse is the response structure for a daily record
type DailyRecordResponse struct {
	ID           uint                       `json:"id"`
	Date         string                     `json:"date"`
	Steps        uint                       `json:"steps"`
	DistanceKM   float64                    `json:"distance_km"`
	CaloriesKcal uint                       `json:"calories_kcal"`
	SleepHours   float64                    `json:"sleep_hours"`
	SleepQuality *SleepQuality              `json:"sleep_quality"`
	Mood         *uint8                     `json:"mood"`
	HydrationML  uint                       `json:"hydration_ml"`
	Activities   []PhysicalActivityResponse `json:"activities"`
}

// ToResponse converts the record to its API shape
func (r *DailyRecord) ToResponse() DailyRecordResponse {
	activities := make([]PhysicalActivityResponse, 0, len(r.Activities))
	for _, a := range r.Activities {
		activities = append(activities, PhysicalActivityResponse{
			ID:              a.ID,
			ActivityType:    a.ActivityType,
			DurationMinutes: a.DurationMinutes,
		})
	}
	return DailyRecordResponse{
		ID:           r.ID,
		Date:         r.Date.Format(DateLayout),
		Steps:        r.Steps,
		DistanceKM:   r.DistanceKM,
		CaloriesKcal: r.CaloriesKcal,
		SleepHours:   r.SleepHours,
		SleepQuality: r.SleepQuality,
		Mood:         r.Mood,
		HydrationML:  r.HydrationML,
		Activities:   activities,
	}
}
