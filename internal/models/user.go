package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a user of the inventory system.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"` // No json for security
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:user"`
	Orders       []Order   `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
