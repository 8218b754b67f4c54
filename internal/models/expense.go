package models

import "time"

type Expense struct {
	ID          uint    `gorm:"primaryKey"`
	UserID      uint    `gorm:"index;not null"` // owning user
	Category    string  `gorm:"size:100;not null"`
	Amount      float64 `gorm:"not null"` // > 0
	Description string  `gorm:"size:500"`
	// Optional crop tag; empty means a general expense apportioned
	// across crops in crop-wise reporting.
	Crop      string    `gorm:"size:50;index"`
	Date      time.Time `gorm:"index;not null"` // never in the future
	CreatedAt time.Time
	UpdatedAt time.Time
}
