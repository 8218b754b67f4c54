package models

import "time"

type Crop struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"` // owning user
	FarmerName  string    `gorm:"size:100;not null"`
	PaddyType   string    `gorm:"size:50;not null"` // must be a known variety
	PlantedDate time.Time `gorm:"not null"`
	LandArea    float64   `gorm:"not null"` // acres, >= 0.1
	PhoneNumber string    `gorm:"size:10;not null"`
	// Always re-derived from PlantedDate + PaddyType, never edited directly.
	FertilizationDate time.Time `gorm:"not null"`
	HarvestDate       time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
