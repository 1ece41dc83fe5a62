package models

import "time"

// User is a registered caller identity. PasswordHash is a bcrypt digest and
// never serializes.
type User struct {
	ID           string `gorm:"primaryKey;type:char(36)" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	Role         string `gorm:"size:64;not null" json:"role"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
