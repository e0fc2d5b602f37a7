package models

import (
	"time"
)

// User represents a registered account. Emails are unique ignoring case.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex:uidx_users_username;size:150;not null" json:"username"`
	Email        string    `gorm:"index:uidx_users_email,unique,expression:LOWER(email);size:254;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Groups       []Group       `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"-"`
	Profile      *Profile      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DailyRecords []DailyRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// GroupNames returns the names of the user's groups, never nil.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// RoleName returns the profile role name, or nil when the user has no role.
func (u *User) RoleName() *string {
	if u.Profile == nil || u.Profile.Role == nil {
		return nil
	}
	name := u.Profile.Role.Name
	return &name
}

// Onboarded reports the profile flag; users without a profile are not onboarded.
func (u *User) Onboarded() bool {
	return u.Profile != nil && u.Profile.Onboarded
}

// UserSummary is the user object returned by registration
type UserSummary struct {
	ID        uint     `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      *string  `json:"role"`
	Groups    []string `json:"groups"`
}

// LoginUser is the user object returned by login and /auth/me
type LoginUser struct {
	UserSummary
	Onboarded bool `json:"onboarded"`
}

// Summary builds the registration view of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.RoleName(),
		Groups:    u.GroupNames(),
	}
}

// LoginView builds the login view of the user
func (u *User) LoginView() LoginUser {
	return LoginUser{
		UserSummary: u.Summary(),
		Onboarded:   u.Onboarded(),
	}
}
