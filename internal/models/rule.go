package models

import "time"

// Automation trigger kinds.
const (
	TriggerIssueMoved       = "issue_moved"
	TriggerIssueLinkAdded   = "issue_link_added"
	TriggerIssueLinkRemoved = "issue_link_removed"
	TriggerSprintClosed     = "sprint_closed"
)

// AutomationRule is a trigger/condition/action tuple. Conditions are
// explicit optional columns, not a loose map: a nil/empty condition means
// "don't care" for that field. Label actions are JSON string arrays.
type AutomationRule struct {
	ID        string `gorm:"primaryKey;size:32"`
	ProjectID string `gorm:"size:32;not null;index"`
	Name      string `gorm:"not null"`
	Enabled   bool   `gorm:"index"`

	TriggerKind        string `gorm:"size:32;not null;index"`
	TriggerToStatusKey string `gorm:"size:16"`
	TriggerLinkType    string `gorm:"size:16"`

	CondIssueType   string `gorm:"size:16"`
	CondHasLabel    string `gorm:"size:64"`
	CondNotHasLabel string `gorm:"size:64"`
	CondIsBlocked   *bool

	ActionAddLabels         string `gorm:"type:json"`
	ActionRemoveLabels      string `gorm:"type:json"`
	ActionMoveOpenToBacklog bool   `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
