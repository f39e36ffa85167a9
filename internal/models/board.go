package models

import "time"

// Board kinds.
const (
	BoardKanban     = "kanban"
	BoardBacklog    = "backlog"
	BoardMilestones = "milestones"
)

// Board is a named set of ordered columns within a project. Boards are
// provisioned once from the project-type template and only removed by the
// project cascade.
type Board struct {
	ID        string `gorm:"primaryKey;size:32"`
	ProjectID string `gorm:"size:32;not null;index"`
	Name      string `gorm:"not null"`
	Kind      string `gorm:"size:16;default:kanban"`
	CreatedAt time.Time

	Columns []Column `gorm:"foreignKey:BoardID"`
}

// Column is a lane on a board. Position is fixed at creation; WIPLimit is
// the only mutable field. StatusKey is derived once from the column name.
type Column struct {
	ID        string `gorm:"primaryKey;size:32"`
	BoardID   string `gorm:"size:32;not null;index"`
	Name      string `gorm:"not null"`
	Position  int    `gorm:"not null"`
	WIPLimit  *int   `gorm:"column:wip_limit"`
	StatusKey string `gorm:"size:16;not null"`
	CreatedAt time.Time
}
