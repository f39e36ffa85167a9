package models

import "time"

// TimeEntry records minutes worked against an issue on a calendar day.
// WorkDate is normalized to midnight UTC. Only the author or the project
// owner may modify or delete an entry.
type TimeEntry struct {
	ID        string    `gorm:"primaryKey;size:32"`
	ProjectID string    `gorm:"size:32;not null;index"`
	IssueID   string    `gorm:"size:32;not null;index"`
	UserID    string    `gorm:"size:64;not null;index"`
	Minutes   int       `gorm:"not null"`
	Billable  bool      `gorm:"default:false"`
	Note      string    `gorm:"type:text"`
	WorkDate  time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
