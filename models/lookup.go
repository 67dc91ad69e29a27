package models

import "gorm.io/gorm"

// Apparatus, focus areas and side quests are the lookup vocabulary athletes
// and bookings reference. Seeded once, edited through the admin dashboard.

type Apparatus struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;size:64" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sortOrder"`
}

type FocusArea struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100" json:"name"`
	ApparatusID *uint  `gorm:"index;column:apparatus_id" json:"apparatusId,omitempty"`

	Apparatus Apparatus `gorm:"foreignKey:ApparatusID;references:ID" json:"apparatus,omitempty"`
}

type SideQuest struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100" json:"name"`
}

type BookingFocusArea struct {
	gorm.Model
	BookingID   uint `gorm:"index;column:booking_id" json:"booking_id"`
	FocusAreaID uint `gorm:"index;column:focus_area_id" json:"focus_area_id"`
}

type BookingApparatus struct {
	gorm.Model
	BookingID   uint `gorm:"index;column:booking_id" json:"booking_id"`
	ApparatusID uint `gorm:"index;column:apparatus_id" json:"apparatus_id"`
}

// TableName pins the junction name; the default pluralizer mangles
// "apparatus".
func (BookingApparatus) TableName() string { return "booking_apparatus" }

func (Apparatus) TableName() string { return "apparatus" }

type BookingSideQuest struct {
	gorm.Model
	BookingID   uint `gorm:"index;column:booking_id" json:"booking_id"`
	SideQuestID uint `gorm:"index;column:side_quest_id" json:"side_quest_id"`
}
