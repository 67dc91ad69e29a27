package models

import "time"

// SiteContent holds the admin-editable copy shown on the public site
// (hero text, policies, announcements).
type SiteContent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:64" json:"slug"`
	Title     string    `gorm:"size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	UpdatedBy string    `gorm:"size:150" json:"updatedBy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
