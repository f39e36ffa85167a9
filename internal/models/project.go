package models

import "time"

// Project types determine which board templates are provisioned at creation.
const (
	ProjectScrum       = "scrum"
	ProjectKanban      = "kanban"
	ProjectTraditional = "traditional"
	ProjectHybrid      = "hybrid"
)

// Project is the tenant boundary: every other entity hangs off a project.
type Project struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"not null"`
	Key       string `gorm:"size:16;uniqueIndex;not null"`
	Type      string `gorm:"size:16;default:kanban"`
	OwnerID   string `gorm:"size:64;not null;index"`
	Status    string `gorm:"size:16;default:active"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Members []Member `gorm:"foreignKey:ProjectID"`
}

// Member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Member is a project membership row. The owner always has exactly one
// row with RoleOwner; mention resolution reads Email and DisplayName.
type Member struct {
	ProjectID   string `gorm:"primaryKey;size:32"`
	UserID      string `gorm:"primaryKey;size:64"`
	Email       string `gorm:"size:128"`
	DisplayName string `gorm:"size:128"`
	Role        string `gorm:"size:16;default:member"`
	CreatedAt   time.Time
}
