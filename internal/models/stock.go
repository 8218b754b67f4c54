package models

import "time"

type StockStatus string

const (
	StockAvailable StockStatus = "Available"
	StockSoldOut   StockStatus = "Sold Out"
	StockPending   StockStatus = "Pending"
)

type Stock struct {
	ID         uint        `gorm:"primaryKey"`
	UserID     uint        `gorm:"index;not null"`
	FarmerName string      `gorm:"size:100;not null"`
	Contact    string      `gorm:"size:50"`
	CropType   string      `gorm:"size:20;not null"` // "paddy" or "rice"
	Variety    string      `gorm:"size:50;not null"`
	Quantity   float64     `gorm:"not null"`
	Unit       string      `gorm:"size:10;not null"` // "kg" or "MT"
	Price      float64     `gorm:"not null"`         // unit price
	Quality    string      `gorm:"size:20"`          // grade
	Status     StockStatus `gorm:"size:20;not null;default:Available"`
	// Required only when CropType is "rice".
	ProcessingType string `gorm:"size:50"`
	PackagingType  string `gorm:"size:50"`
	ImagePath      string `gorm:"size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
