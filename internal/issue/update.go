package issue

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// Patch is a partial issue update. Nil fields are untouched; an empty
// string in a reference pointer clears the reference.
type Patch struct {
	Title              *string
	Description        *string
	Type               *string
	Priority           *string
	AcceptanceCriteria *string
	StoryPoints        *int
	ClearStoryPoints   bool
	AssigneeID         *string
	SprintID           *string
	EpicID             *string
	Labels             *[]string
	Components         *[]string
}

// Update applies a partial patch, re-validating each cross-reference field
// independently before any write.
func Update(gdb *gorm.DB, actorID, issueID string, p Patch) error {
	iss, err := load(gdb, issueID)
	if err != nil {
		return err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}

	updates := make(map[string]interface{})

	if p.Title != nil {
		if *p.Title == "" {
			return apperr.New(apperr.KindInvalidPayload, "title must not be empty").WithField("title", "required")
		}
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Type != nil {
		if !validIssueType(*p.Type) {
			return apperr.New(apperr.KindInvalidPayload, "unknown issue type %q", *p.Type).WithField("type", "enum")
		}
		updates["type"] = *p.Type
	}
	if p.Priority != nil {
		if !validPriority(*p.Priority) {
			return apperr.New(apperr.KindInvalidPayload, "unknown priority %q", *p.Priority).WithField("priority", "enum")
		}
		updates["priority"] = *p.Priority
	}
	if p.AcceptanceCriteria != nil {
		updates["acceptance_criteria"] = *p.AcceptanceCriteria
	}
	if p.StoryPoints != nil {
		updates["story_points"] = *p.StoryPoints
	} else if p.ClearStoryPoints {
		updates["story_points"] = nil
	}
	if p.AssigneeID != nil {
		if *p.AssigneeID == "" {
			updates["assignee_id"] = nil
		} else {
			if err := validateAssignee(gdb, iss.ProjectID, *p.AssigneeID); err != nil {
				return err
			}
			updates["assignee_id"] = *p.AssigneeID
		}
	}
	if p.SprintID != nil {
		if *p.SprintID == "" {
			updates["sprint_id"] = nil
		} else {
			if err := validateSprint(gdb, iss.ProjectID, *p.SprintID); err != nil {
				return err
			}
			updates["sprint_id"] = *p.SprintID
		}
	}
	if p.EpicID != nil {
		if *p.EpicID == "" {
			updates["epic_id"] = nil
		} else {
			if err := validateEpic(gdb, iss.ProjectID, iss.ID, *p.EpicID); err != nil {
				return err
			}
			updates["epic_id"] = *p.EpicID
		}
	}
	if p.Labels != nil {
		if len(*p.Labels) > maxLabelsPerIssue {
			return apperr.New(apperr.KindInvalidPayload, "at most %d labels per issue", maxLabelsPerIssue).
				WithField("labels", "max_50")
		}
		updates["labels"] = models.EncodeStrings(*p.Labels)
	}
	if p.Components != nil {
		if err := project.ValidateComponents(gdb, iss.ProjectID, *p.Components); err != nil {
			return err
		}
		updates["components"] = models.EncodeStrings(*p.Components)
	}

	if len(updates) == 0 {
		return nil
	}

	if err := gdb.Model(&models.Issue{}).Where("id = ?", iss.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("issue: update %s: %w", iss.ID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: iss.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActIssueUpdated,
		IssueID:   iss.ID,
		Meta:      activity.Meta{"issueTitle": iss.Title}.Encode(),
	})

	return nil
}
