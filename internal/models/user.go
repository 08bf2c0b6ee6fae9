package models

import "time"

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// Roles a user may register with. Admin accounts are only created through
// the admin user-management endpoints.
var RegisterableRoles = []string{RoleUser, RolePublisher}

// User represents an authenticated user in the system.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Email               string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role                string     `gorm:"size:20;not null;default:user" json:"role"`
	Password            string     `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	ResetPasswordToken  string     `gorm:"index" json:"-"`             // sha256 hex of the plaintext reset token
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
