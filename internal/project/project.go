// Package project provides project lifecycle, membership, and the
// component registry.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"gorm.io/gorm"
)

// keyPattern: a letter followed by 1–9 letters/digits, e.g. "CRM", "FLOW2".
var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// MemberInfo identifies a member plus the profile fields mention
// resolution needs. Identity itself is resolved by an external collaborator.
type MemberInfo struct {
	UserID      string
	Email       string
	DisplayName string
}

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	Name    string
	Key     string
	Type    string
	Owner   MemberInfo
	Members []MemberInfo
}

// Create creates a project, its membership rows, and its template boards.
// Returns the project and the default board ID.
func Create(gdb *gorm.DB, opts CreateOpts) (*models.Project, string, error) {
	if opts.Name == "" {
		return nil, "", apperr.New(apperr.KindInvalidPayload, "name is required").WithField("name", "required")
	}
	if opts.Owner.UserID == "" {
		return nil, "", apperr.New(apperr.KindInvalidPayload, "owner is required").WithField("owner", "required")
	}

	key := strings.ToUpper(strings.TrimSpace(opts.Key))
	if !keyPattern.MatchString(key) {
		return nil, "", apperr.New(apperr.KindInvalidKey, "key %q must be 2-10 characters, letter first, letters and digits only", opts.Key).
			WithField("key", "pattern")
	}

	projType := opts.Type
	if projType == "" {
		projType = models.ProjectKanban
	}
	switch projType {
	case models.ProjectScrum, models.ProjectKanban, models.ProjectTraditional, models.ProjectHybrid:
	default:
		return nil, "", apperr.New(apperr.KindInvalidPayload, "unknown project type %q", opts.Type).WithField("type", "enum")
	}

	id, err := db.NewID("prj")
	if err != nil {
		return nil, "", err
	}

	proj := models.Project{
		ID:      id,
		Name:    opts.Name,
		Key:     key,
		Type:    projType,
		OwnerID: opts.Owner.UserID,
		Status:  "active",
	}

	var defaultBoardID string
	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proj).Error; err != nil {
			if db.IsDuplicate(err) {
				return apperr.New(apperr.KindKeyTaken, "project key %q is already in use", key)
			}
			return fmt.Errorf("project: create: %w", err)
		}

		members := append([]MemberInfo{opts.Owner}, opts.Members...)
		seen := make(map[string]bool)
		for i, m := range members {
			if m.UserID == "" || seen[m.UserID] {
				continue
			}
			seen[m.UserID] = true
			role := models.RoleMember
			if i == 0 {
				role = models.RoleOwner
			}
			row := models.Member{
				ProjectID:   proj.ID,
				UserID:      m.UserID,
				Email:       m.Email,
				DisplayName: m.DisplayName,
				Role:        role,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("project: add member %s: %w", m.UserID, err)
			}
		}

		boardID, err := board.CreateForProject(tx, proj.ID, projType)
		if err != nil {
			return err
		}
		defaultBoardID = boardID
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: proj.ID,
		ActorID:   opts.Owner.UserID,
		Kind:      models.ActProjectCreated,
		Meta:      activity.Meta{"key": key, "type": projType}.Encode(),
	})

	return &proj, defaultBoardID, nil
}

// Get returns a project if the actor is a member. Out-of-scope projects
// report not_found so their existence never leaks.
func Get(gdb *gorm.DB, projectID, actorID string) (*models.Project, error) {
	var proj models.Project
	if err := gdb.Preload("Members").Where("id = ?", projectID).First(&proj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "project not found: %s", projectID)
		}
		return nil, fmt.Errorf("project: get %s: %w", projectID, err)
	}
	if !IsMember(gdb, projectID, actorID) {
		return nil, apperr.New(apperr.KindNotFound, "project not found: %s", projectID)
	}
	return &proj, nil
}

// List returns the projects the actor belongs to.
func List(gdb *gorm.DB, actorID string) ([]models.Project, error) {
	var projects []models.Project
	err := gdb.Where("id IN (?)",
		gdb.Model(&models.Member{}).Select("project_id").Where("user_id = ?", actorID),
	).Order("created_at ASC").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project: list for %s: %w", actorID, err)
	}
	return projects, nil
}

// IsMember reports whether userID belongs to the project.
func IsMember(gdb *gorm.DB, projectID, userID string) bool {
	var count int64
	if err := gdb.Model(&models.Member{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// IsOwner reports whether userID owns the project.
func IsOwner(gdb *gorm.DB, projectID, userID string) bool {
	var count int64
	if err := gdb.Model(&models.Project{}).
		Where("id = ? AND owner_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// RequireMember returns forbidden unless the actor belongs to the project.
func RequireMember(gdb *gorm.DB, projectID, actorID string) error {
	if !IsMember(gdb, projectID, actorID) {
		return apperr.New(apperr.KindForbidden, "user %s is not a member of project %s", actorID, projectID)
	}
	return nil
}

// RequireOwner returns owner_only unless the actor owns the project.
func RequireOwner(gdb *gorm.DB, projectID, actorID string) error {
	if !IsOwner(gdb, projectID, actorID) {
		return apperr.New(apperr.KindOwnerOnly, "user %s is not the owner of project %s", actorID, projectID)
	}
	return nil
}

// AddMember adds a member row. Owner-only.
func AddMember(gdb *gorm.DB, projectID, actorID string, m MemberInfo) error {
	if err := RequireOwner(gdb, projectID, actorID); err != nil {
		return err
	}
	if m.UserID == "" {
		return apperr.New(apperr.KindInvalidPayload, "member user id is required").WithField("userId", "required")
	}
	row := models.Member{
		ProjectID:   projectID,
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        models.RoleMember,
	}
	if err := gdb.Create(&row).Error; err != nil {
		if db.IsDuplicate(err) {
			return nil // already a member
		}
		return fmt.Errorf("project: add member %s: %w", m.UserID, err)
	}
	return nil
}

// RemoveMember removes a member row. Owner-only; the owner is never
// removable.
func RemoveMember(gdb *gorm.DB, projectID, actorID, userID string) error {
	if err := RequireOwner(gdb, projectID, actorID); err != nil {
		return err
	}
	if IsOwner(gdb, projectID, userID) {
		return apperr.New(apperr.KindForbidden, "the project owner cannot be removed")
	}
	result := gdb.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Member{})
	if result.Error != nil {
		return fmt.Errorf("project: remove member %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "member not found: %s", userID)
	}
	return nil
}

// Members returns the project's membership rows ordered by user id, the
// deterministic iteration order mention resolution relies on.
func Members(gdb *gorm.DB, projectID string) ([]models.Member, error) {
	var members []models.Member
	if err := gdb.Where("project_id = ?", projectID).Order("user_id ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("project: members of %s: %w", projectID, err)
	}
	return members, nil
}
