package models

import "time"

type FarmerStatus string

const (
	FarmerActive   FarmerStatus = "active"
	FarmerInactive FarmerStatus = "inactive"
)

// Farmer is the admin-facing aggregate view of a farming user.
// TotalSales/TotalExpenses are denormalized counters kept in step by the
// sales and expense handlers; the counter write is a separate statement
// from the ledger write, so a crash between the two can leave drift.
type Farmer struct {
	ID            uint         `gorm:"primaryKey"`
	UserID        uint         `gorm:"uniqueIndex;not null"`
	Name          string       `gorm:"size:100;not null"`
	Region        string       `gorm:"size:100;index"`
	Contact       string       `gorm:"size:50"`
	Status        FarmerStatus `gorm:"size:20;not null;default:active"`
	TotalSales    float64      `gorm:"not null;default:0"`
	TotalExpenses float64      `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (f *Farmer) Profit() float64 {
	return f.TotalSales - f.TotalExpenses
}

// ROI in percent, 0 when there are no expenses.
func (f *Farmer) ROI() float64 {
	if f.TotalExpenses == 0 {
		return 0
	}
	return f.Profit() / f.TotalExpenses * 100
}
