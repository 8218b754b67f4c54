package models

import "time"

type Sale struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index;not null"` // owning user
	CropType     string    `gorm:"size:50;not null"`
	Quantity     float64   `gorm:"not null"` // > 0
	Price        float64   `gorm:"not null"` // unit price, > 0
	Amount       float64   `gorm:"not null"` // quantity * price, recomputed on write
	BuyerName    string    `gorm:"size:100;not null"`
	BuyerContact string    `gorm:"size:50"`
	Date         time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
