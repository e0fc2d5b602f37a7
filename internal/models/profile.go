package models

import (
	"time"
)

// Gender values accepted on a profile
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// ActivityLevel is the self-reported activity level from the onboarding survey
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentario"
	ActivityLight      ActivityLevel = "ligero"
	ActivityModerate   ActivityLevel = "moderado"
	ActivityActive     ActivityLevel = "activo"
	ActivityVeryActive ActivityLevel = "muy_activo"
)

// Profile extends a User with demographic and survey data (1:1)
type Profile struct {
	ID             uint           `gorm:"primaryKey" json:"-"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"-"`
	DateOfBirth    *time.Time     `gorm:"type:date" json:"-"`
	HeightCM       *uint          `json:"height_cm"`
	WeightKG       *float64       `gorm:"type:decimal(6,2)" json:"weight_kg"`
	Gender         *Gender        `gorm:"size:1" json:"gender"`
	ActivityLevel  *ActivityLevel `gorm:"size:20" json:"activity_level"`
	SleepHours     *float64       `gorm:"type:decimal(4,2)" json:"sleep_hours"`
	BedTime        *string        `gorm:"size:5" json:"bed_time"`
	WakeTime       *string        `gorm:"size:5" json:"wake_time"`
	WakesUpAtNight bool           `gorm:"not null;default:false" json:"wakes_up_at_night"`
	Onboarded      bool           `gorm:"not null;default:false" json:"onboarded"`
	RoleID         *uint          `gorm:"index" json:"-"`
	CreatedAt      time.Time      `json:"-"`
	UpdatedAt      time.Time      `json:"-"`

	// Relations
	Role *Group `gorm:"foreignKey:RoleID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for Profile model
func (Profile) TableName() string {
	return "profiles"
}

// ProfileResponse is the onboarding projection of a profile
type ProfileResponse struct {
	DateOfBirth    *string        `json:"date_of_birth"`
	HeightCM       *uint          `json:"height_cm"`
	WeightKG       *float64       `json:"weight_kg"`
	Gender         *Gender        `json:"gender"`
	ActivityLevel  *ActivityLevel `json:"activity_level"`
	SleepHours     *float64       `json:"sleep_hours"`
	BedTime        *string        `json:"bed_time"`
	WakeTime       *string        `json:"wake_time"`
	WakesUpAtNight bool           `json:"wakes_up_at_night"`
	Onboarded      bool           `json:"onboarded"`
	Role           *string        `json:"role"`
}

// ToResponse projects the profile for the onboarding endpoints
func (p *Profile) ToResponse() *ProfileResponse {
	resp := &ProfileResponse{
		HeightCM:       p.HeightCM,
		WeightKG:       p.WeightKG,
		Gender:         p.Gender,
		ActivityLevel:  p.ActivityLevel,
		SleepHours:     p.SleepHours,
		BedTime:        p.BedTime,
		WakeTime:       p.WakeTime,
		WakesUpAtNight: p.WakesUpAtNight,
		Onboarded:      p.Onboarded,
	}
	if p.DateOfBirth != nil {
		s := p.DateOfBirth.Format(DateLayout)
		resp.DateOfBirth = &s
	}
	if p.Role != nil {
		name := p.Role.Name
		resp.Role = &name
	}
	return resp
}
