package models

import "time"

// KnowledgePost is a community experience shared by any user.
type KnowledgePost struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null"`
	Email      string `gorm:"size:100;not null"`
	Experience string `gorm:"type:text;not null"`
	ImagePath  string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
