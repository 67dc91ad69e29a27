package models

import (
	"time"

	"gorm.io/gorm"
)

// Waiver is a signed liability release for one athlete. Rows are immutable
// once signed; a new signature supersedes rather than updates, and the latest
// signed row is the athlete's current waiver.
type Waiver struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AthleteID uint `gorm:"index;column:athlete_id" json:"athleteId"`
	ParentID  uint `gorm:"index;column:parent_id" json:"parentId"`

	RelationshipToAthlete string     `gorm:"size:50" json:"relationshipToAthlete"`
	SignerName            string     `gorm:"size:150" json:"signerName"`
	Signature             string     `gorm:"type:text" json:"signature"`
	SignedAt              *time.Time `gorm:"column:signed_at;index" json:"signedAt"`

	UnderstandsRisks        bool `gorm:"column:understands_risks" json:"understandsRisks"`
	AgreesToPolicies        bool `gorm:"column:agrees_to_policies" json:"agreesToPolicies"`
	AuthorizesEmergencyCare bool `gorm:"column:authorizes_emergency_care" json:"authorizesEmergencyCare"`
	AllowsPhotoVideo        bool `gorm:"column:allows_photo_video" json:"allowsPhotoVideo"`
	ConfirmsAuthority       bool `gorm:"column:confirms_authority" json:"confirmsAuthority"`
}

// Signed reports whether the waiver has actually been executed.
func (w *Waiver) Signed() bool {
	return w.SignedAt != nil && w.Signature != ""
}
