package models

import (
	"time"

	"gorm.io/gorm"
)

type Athlete struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Every athlete belongs to exactly one parent. The column is nullable at
	// the SQL level only so the audit can detect legacy rows that lost their
	// owner; application code always sets it.
	ParentID *uint `gorm:"index;column:parent_id" json:"parentId"`

	FirstName   string     `gorm:"size:100" json:"firstName"`
	LastName    string     `gorm:"size:100" json:"lastName"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      string     `gorm:"size:32" json:"gender,omitempty"`
	Experience  string     `gorm:"size:50" json:"experience,omitempty"`
	Allergies   string     `gorm:"size:255" json:"allergies,omitempty"`

	Parent  Parent         `gorm:"foreignKey:ParentID;references:ID" json:"-"`
	Waivers []Waiver       `gorm:"foreignKey:AthleteID" json:"waivers,omitempty"`
	Skills  []AthleteSkill `gorm:"foreignKey:AthleteID" json:"skills,omitempty"`
}
