package models

import (
	"time"

	"gorm.io/gorm"
)

type LessonType struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Slug            string `gorm:"uniqueIndex;size:64" json:"slug"`
	Name            string `gorm:"size:100" json:"name"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int    `gorm:"column:duration_minutes" json:"durationMinutes"`
	MaxAthletes     int    `gorm:"column:max_athletes;default:1" json:"maxAthletes"`

	// Prices in cents to match the provider's amount_total unit.
	FullPriceCents      int64 `gorm:"column:full_price_cents" json:"fullPriceCents"`
	ReservationFeeCents int64 `gorm:"column:reservation_fee_cents" json:"reservationFeeCents"`

	Active bool `gorm:"default:true" json:"active"`
}
