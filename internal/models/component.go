package models

import "time"

// Component is a named area of a project. Names are unique per project,
// compared case-insensitively; NameLower holds the canonical form.
type Component struct {
	ID        string `gorm:"primaryKey;size:32"`
	ProjectID string `gorm:"size:32;not null;uniqueIndex:idx_component_name"`
	Name      string `gorm:"size:128;not null"`
	NameLower string `gorm:"size:128;not null;uniqueIndex:idx_component_name"`
	CreatedAt time.Time
}
