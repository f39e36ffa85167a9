package models

import "time"

// Activity kinds.
const (
	ActIssueCreated      = "issue_created"
	ActIssueMoved        = "issue_moved"
	ActIssueUpdated      = "issue_updated"
	ActIssueCommented    = "issue_commented"
	ActIssueBulkUpdated  = "issue_bulk_updated"
	ActLinkAdded         = "link_added"
	ActLinkRemoved       = "link_removed"
	ActSprintCreated     = "sprint_created"
	ActSprintUpdated     = "sprint_updated"
	ActSprintActivated   = "sprint_activated"
	ActSprintClosed      = "sprint_closed"
	ActTimeLogged        = "time_logged"
	ActTimeUpdated       = "time_updated"
	ActTimeDeleted       = "time_deleted"
	ActAutomationApplied = "automation_applied"
	ActProjectCreated    = "project_created"
)

// Activity is an append-only domain event. It is the single feed into
// automation auditing and notification fan-out; rows are never mutated and
// only removed by the project cascade.
type Activity struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ProjectID string    `gorm:"size:32;not null;index"`
	ActorID   string    `gorm:"size:64;not null"`
	Kind      string    `gorm:"size:32;not null;index"`
	IssueID   string    `gorm:"size:32;index"`
	SprintID  string    `gorm:"size:32"`
	Meta      string    `gorm:"type:json"`
	CreatedAt time.Time `gorm:"index"`
}
