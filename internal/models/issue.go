package models

import "time"

// Issue types.
const (
	TypeEpic   = "epic"
	TypeStory  = "story"
	TypeTask   = "task"
	TypeDefect = "defect"
	TypeSpike  = "spike"
)

// Issue priorities.
const (
	PriorityHighest = "highest"
	PriorityHigh    = "high"
	PriorityMedium  = "medium"
	PriorityLow     = "low"
)

// Link types between issues.
const (
	LinkBlocks    = "blocks"
	LinkBlockedBy = "blocked_by"
	LinkRelatesTo = "relates_to"
)

// Issue is the core work item. Position is a fractional ordering key scoped
// to the issue's column; StatusKey mirrors the column's derived status.
// Labels and Components are JSON string arrays.
type Issue struct {
	ID                 string `gorm:"primaryKey;size:32"`
	ProjectID          string `gorm:"size:32;not null;index"`
	BoardID            string `gorm:"size:32;not null;index"`
	ColumnID           string `gorm:"size:32;not null;index"`
	Title              string `gorm:"not null"`
	Description        string `gorm:"type:text"`
	Type               string `gorm:"size:16;default:task"`
	Priority           string `gorm:"size:16;default:medium"`
	StatusKey          string `gorm:"size:16;not null;index"`
	AcceptanceCriteria string `gorm:"type:text"`
	StoryPoints        *int
	SprintID           *string `gorm:"size:32;index"`
	EpicID             *string `gorm:"size:32;index"`
	Labels             string  `gorm:"type:json"`
	Components         string  `gorm:"type:json"`
	Position           float64 `gorm:"not null"`
	AssigneeID         *string `gorm:"size:64;index"`
	ReporterID         string  `gorm:"size:64;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Links    []IssueLink `gorm:"foreignKey:IssueID"`
	Comments []Comment   `gorm:"foreignKey:IssueID"`
}

// IssueLink is a directed relationship between two issues in the same
// project. An issue is blocked iff it holds at least one blocked_by link;
// that predicate is computed on read, never stored.
type IssueLink struct {
	IssueID      string `gorm:"primaryKey;size:32"`
	Type         string `gorm:"primaryKey;size:16"`
	OtherIssueID string `gorm:"primaryKey;size:32"`
	CreatedAt    time.Time
}

// Comment is an append-only note on an issue. Bodies are scanned for
// @mentions at creation time.
type Comment struct {
	ID        string `gorm:"primaryKey;size:32"`
	IssueID   string `gorm:"size:32;not null;index"`
	ProjectID string `gorm:"size:32;not null;index"`
	AuthorID  string `gorm:"size:64;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
