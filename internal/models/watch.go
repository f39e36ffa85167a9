package models

import "time"

// Watch subscribes a user to a project (IssueID empty) or a single issue.
// Row presence is the only state: toggling off deletes the row.
type Watch struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID string `gorm:"size:32;not null;uniqueIndex:idx_watch_scope"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_watch_scope"`
	IssueID   string `gorm:"size:32;uniqueIndex:idx_watch_scope"`
	CreatedAt time.Time
}
