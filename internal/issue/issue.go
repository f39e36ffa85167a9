// Package issue provides issue lifecycle operations: creation, board
// movement, partial and bulk updates, dependency links, and comments.
package issue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new issue.
type CreateOpts struct {
	BoardID            string
	ColumnID           string
	Title              string
	Description        string
	Type               string
	Priority           string
	AcceptanceCriteria string
	StoryPoints        *int
	SprintID           string
	EpicID             string
	Labels             []string
	Components         []string
	AssigneeID         string
}

// maxLabelsPerIssue caps the label set on every write path, including
// bulk updates and automation actions.
const maxLabelsPerIssue = 50

func validIssueType(t string) bool {
	switch t {
	case models.TypeEpic, models.TypeStory, models.TypeTask, models.TypeDefect, models.TypeSpike:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch p {
	case models.PriorityHighest, models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return true
	}
	return false
}

// Create validates the destination column and every cross-reference, then
// appends the issue at the end of the column.
func Create(gdb *gorm.DB, actorID string, opts CreateOpts) (*models.Issue, error) {
	if opts.Title == "" {
		return nil, apperr.New(apperr.KindInvalidPayload, "title is required").WithField("title", "required")
	}
	issueType := opts.Type
	if issueType == "" {
		issueType = models.TypeTask
	}
	if !validIssueType(issueType) {
		return nil, apperr.New(apperr.KindInvalidPayload, "unknown issue type %q", opts.Type).WithField("type", "enum")
	}
	priority := opts.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, apperr.New(apperr.KindInvalidPayload, "unknown priority %q", opts.Priority).WithField("priority", "enum")
	}
	if len(opts.Labels) > maxLabelsPerIssue {
		return nil, apperr.New(apperr.KindInvalidPayload, "at most %d labels per issue", maxLabelsPerIssue).
			WithField("labels", "max_50")
	}

	col, err := board.GetColumn(gdb, opts.ColumnID)
	if err != nil {
		return nil, err
	}
	if col.BoardID != opts.BoardID {
		return nil, apperr.New(apperr.KindColumnNotFound, "column %s is not on board %s", opts.ColumnID, opts.BoardID)
	}
	b, err := board.Get(gdb, opts.BoardID)
	if err != nil {
		return nil, err
	}
	projectID := b.ProjectID

	if err := project.RequireMember(gdb, projectID, actorID); err != nil {
		return nil, err
	}
	if err := board.CheckWIP(gdb, col, ""); err != nil {
		return nil, err
	}
	if err := validateSprint(gdb, projectID, opts.SprintID); err != nil {
		return nil, err
	}
	if err := validateAssignee(gdb, projectID, opts.AssigneeID); err != nil {
		return nil, err
	}
	if err := project.ValidateComponents(gdb, projectID, opts.Components); err != nil {
		return nil, err
	}

	id, err := db.NewID("is")
	if err != nil {
		return nil, err
	}
	if err := validateEpic(gdb, projectID, id, opts.EpicID); err != nil {
		return nil, err
	}

	pos, err := appendPosition(gdb, col.ID)
	if err != nil {
		return nil, err
	}

	iss := models.Issue{
		ID:                 id,
		ProjectID:          projectID,
		BoardID:            opts.BoardID,
		ColumnID:           col.ID,
		Title:              opts.Title,
		Description:        opts.Description,
		Type:               issueType,
		Priority:           priority,
		StatusKey:          col.StatusKey,
		AcceptanceCriteria: opts.AcceptanceCriteria,
		StoryPoints:        opts.StoryPoints,
		Labels:             models.EncodeStrings(opts.Labels),
		Components:         models.EncodeStrings(opts.Components),
		Position:           pos,
		ReporterID:         actorID,
	}
	if opts.SprintID != "" {
		iss.SprintID = &opts.SprintID
	}
	if opts.EpicID != "" {
		iss.EpicID = &opts.EpicID
	}
	if opts.AssigneeID != "" {
		iss.AssigneeID = &opts.AssigneeID
	}

	if err := gdb.Create(&iss).Error; err != nil {
		return nil, fmt.Errorf("issue: create: %w", err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: projectID,
		ActorID:   actorID,
		Kind:      models.ActIssueCreated,
		IssueID:   iss.ID,
		Meta:      activity.Meta{"issueTitle": iss.Title, "columnId": col.ID}.Encode(),
	})

	return &iss, nil
}

// Get retrieves an issue with its links, scoped to the actor's projects.
func Get(gdb *gorm.DB, issueID, actorID string) (*models.Issue, error) {
	iss, err := load(gdb, issueID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return nil, apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}
	return iss, nil
}

// ListFilters holds optional filters for listing issues.
type ListFilters struct {
	BoardID    string
	ColumnID   string
	SprintID   string
	EpicID     string
	Type       string
	StatusKey  string
	AssigneeID string
}

// List returns a project's issues matching the filters, in column order.
func List(gdb *gorm.DB, projectID string, f ListFilters) ([]models.Issue, error) {
	q := gdb.Where("project_id = ?", projectID)
	if f.BoardID != "" {
		q = q.Where("board_id = ?", f.BoardID)
	}
	if f.ColumnID != "" {
		q = q.Where("column_id = ?", f.ColumnID)
	}
	if f.SprintID != "" {
		q = q.Where("sprint_id = ?", f.SprintID)
	}
	if f.EpicID != "" {
		q = q.Where("epic_id = ?", f.EpicID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.StatusKey != "" {
		q = q.Where("status_key = ?", f.StatusKey)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}

	var issues []models.Issue
	if err := q.Order("column_id ASC, position ASC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("issue: list: %w", err)
	}
	return issues, nil
}

// IsBlocked reports whether the issue holds at least one blocked_by link.
// Computed on read, never stored.
func IsBlocked(gdb *gorm.DB, issueID string) (bool, error) {
	var count int64
	if err := gdb.Model(&models.IssueLink{}).
		Where("issue_id = ? AND type = ?", issueID, models.LinkBlockedBy).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("issue: blocked check %s: %w", issueID, err)
	}
	return count > 0, nil
}

func load(gdb *gorm.DB, issueID string) (*models.Issue, error) {
	var iss models.Issue
	if err := gdb.Preload("Links").Where("id = ?", issueID).First(&iss).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
		}
		return nil, fmt.Errorf("issue: get %s: %w", issueID, err)
	}
	return &iss, nil
}

func validateSprint(gdb *gorm.DB, projectID, sprintID string) error {
	if sprintID == "" {
		return nil
	}
	var count int64
	if err := gdb.Model(&models.Sprint{}).
		Where("id = ? AND project_id = ?", sprintID, projectID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("issue: validate sprint: %w", err)
	}
	if count == 0 {
		return apperr.New(apperr.KindInvalidSprint, "sprint %s is not in the project", sprintID)
	}
	return nil
}

func validateEpic(gdb *gorm.DB, projectID, issueID, epicID string) error {
	if epicID == "" {
		return nil
	}
	if epicID == issueID {
		return apperr.New(apperr.KindInvalidEpic, "an issue cannot be its own epic")
	}
	var epic models.Issue
	if err := gdb.Select("id, project_id, type").Where("id = ?", epicID).First(&epic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindInvalidEpic, "epic not found: %s", epicID)
		}
		return fmt.Errorf("issue: validate epic: %w", err)
	}
	if epic.ProjectID != projectID {
		return apperr.New(apperr.KindInvalidEpic, "epic %s is not in the project", epicID)
	}
	if !strings.EqualFold(epic.Type, models.TypeEpic) {
		return apperr.New(apperr.KindInvalidEpic, "issue %s is type %q, not an epic", epicID, epic.Type)
	}
	return nil
}

func validateAssignee(gdb *gorm.DB, projectID, assigneeID string) error {
	if assigneeID == "" {
		return nil
	}
	if !project.IsMember(gdb, projectID, assigneeID) {
		return apperr.New(apperr.KindInvalidAssignee, "user %s is not a project member", assigneeID)
	}
	return nil
}
