package models

import "time"

// Role is the closed set of authorization roles a user can hold.
type Role string

const (
	RoleUser       Role = "USER"
	RoleModerator  Role = "MODERATOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User rows with a nil PasswordHash belong to provider-created accounts and
// can never authenticate through the password path.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:191;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash   *string   `gorm:"size:255" json:"-"`
	Role           Role      `gorm:"size:32;not null;default:USER" json:"role"`
	Provider       string    `gorm:"size:32;index:idx_provider_subject" json:"provider,omitempty"`
	ProviderID     string    `gorm:"size:191;index:idx_provider_subject" json:"-"`
	FailedAttempts int       `gorm:"not null;default:0" json:"-"`
	Locked         bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
