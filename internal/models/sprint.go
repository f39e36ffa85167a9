package models

import "time"

// Sprint states. Closed is terminal.
const (
	SprintPlanned = "planned"
	SprintActive  = "active"
	SprintClosed  = "closed"
)

// Sprint is a time-boxed iteration. At most one sprint per project is
// active at any time.
type Sprint struct {
	ID             string `gorm:"primaryKey;size:32"`
	ProjectID      string `gorm:"size:32;not null;index"`
	Name           string `gorm:"not null"`
	Goal           string `gorm:"type:text"`
	StartDate      *time.Time
	EndDate        *time.Time
	CapacityPoints *int
	State          string `gorm:"size:16;default:planned;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
