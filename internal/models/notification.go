package models

import "time"

// Notification kinds. Generic kinds mirror activity kinds; mentioned is the
// higher-salience duplicate sent to mentioned users on top of the generic one.
const (
	NotifyMentioned = "mentioned"
	NotifyDigest    = "digest"
)

// Notification is a per-recipient record created by fan-out. Immutable
// except for ReadAt.
type Notification struct {
	ID        string     `gorm:"primaryKey;size:32"`
	ProjectID string     `gorm:"size:32;not null;index:idx_notif_user"`
	UserID    string     `gorm:"size:64;not null;index:idx_notif_user"`
	Kind      string     `gorm:"size:32;not null"`
	ActorID   string     `gorm:"size:64"`
	IssueID   string     `gorm:"size:32"`
	SprintID  string     `gorm:"size:32"`
	Title     string     `gorm:"not null"`
	Body      string     `gorm:"type:text"`
	Meta      string     `gorm:"type:json"`
	CreatedAt time.Time
	ReadAt    *time.Time `gorm:"index"`
}
