package models

import "time"

type Cart struct {
	ID          uint       `gorm:"primaryKey"`
	UserID      uint       `gorm:"uniqueIndex;not null"`
	Items       []CartItem `gorm:"foreignKey:CartID"`
	TotalAmount float64    `gorm:"not null;default:0"` // sum of line totals
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ID       uint    `gorm:"primaryKey"`
	CartID   uint    `gorm:"index;not null"`
	StockID  uint    `gorm:"index;not null"` // weak reference, no cascade
	Quantity float64 `gorm:"not null"`
	// Unit price frozen at first add; a quantity merge re-reads the live
	// stock price and re-prices the whole line.
	Price      float64 `gorm:"not null"`
	TotalPrice float64 `gorm:"not null"` // quantity * price
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
