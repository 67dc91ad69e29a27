package models

import (
	"time"

	"gorm.io/gorm"
)

type Skill struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100" json:"name"`
	ApparatusID *uint  `gorm:"index;column:apparatus_id" json:"apparatusId,omitempty"`
	Level       string `gorm:"size:32" json:"level,omitempty"` // beginner/intermediate/advanced

	Apparatus Apparatus `gorm:"foreignKey:ApparatusID;references:ID" json:"apparatus,omitempty"`
}

// AthleteSkill tracks one athlete's progress on one skill.
type AthleteSkill struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AthleteID uint   `gorm:"index:idx_athlete_skill,unique;column:athlete_id" json:"athleteId"`
	SkillID   uint   `gorm:"index:idx_athlete_skill,unique;column:skill_id" json:"skillId"`
	Status    string `gorm:"size:32;default:learning" json:"status"` // learning/consistent/mastered
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	Skill Skill `gorm:"foreignKey:SkillID;references:ID" json:"skill,omitempty"`
}
