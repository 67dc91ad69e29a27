package models

import "gorm.io/gorm"

// BookingAthlete links a booking to the athletes attending it, ordered by
// lesson slot (slot 1 is the primary athlete).
type BookingAthlete struct {
	gorm.Model
	BookingID uint `gorm:"index;column:booking_id" json:"booking_id"`
	AthleteID uint `gorm:"index;column:athlete_id" json:"athlete_id"`
	SlotOrder int  `gorm:"column:slot_order;default:1" json:"slot_order"`

	Athlete Athlete `gorm:"foreignKey:AthleteID;references:ID" json:"athlete,omitempty"`
}
