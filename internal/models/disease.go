package models

import "time"

type DiseaseRecord struct {
	ID                   uint     `gorm:"primaryKey"`
	Name                 string   `gorm:"size:100;not null"`
	AffectedParts        []string `gorm:"serializer:json;not null"`
	Symptoms             []string `gorm:"serializer:json;not null"`
	FavorableConditions  []string `gorm:"serializer:json;not null"`
	Treatments           []string `gorm:"serializer:json;not null"`
	NextSeasonManagement []string `gorm:"serializer:json;not null"`
	ImagePath            string   `gorm:"size:255"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
