package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleFarmer UserRole = "farmer"
	RoleBuyer  UserRole = "buyer"
)

type User struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:100;not null"`
	Email string `gorm:"size:100;uniqueIndex;not null"` // stored lowercased
	// Bcrypt hash; seeded legacy accounts may still hold plaintext here
	// until their first login rehashes it.
	Password  string   `gorm:"size:255;not null"`
	Role      UserRole `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
