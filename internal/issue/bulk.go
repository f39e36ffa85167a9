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

// maxBulkIssues caps one bulk update.
const maxBulkIssues = 200

// BulkPatch describes a bulk change across issues of one project.
type BulkPatch struct {
	SetAssignee   string
	ClearAssignee bool
	SetSprint     string
	ClearSprint   bool

	AddLabels        []string
	RemoveLabels     []string
	AddComponents    []string
	RemoveComponents []string
}

// BulkResult reports how many issues matched and were modified.
type BulkResult struct {
	Matched  int64
	Modified int64
}

// BulkUpdate applies one patch to up to 200 issues, which must all belong
// to the same project. Recorded as a single activity event rather than one
// per issue.
func BulkUpdate(gdb *gorm.DB, actorID string, issueIDs []string, p BulkPatch) (*BulkResult, error) {
	if len(issueIDs) == 0 {
		return nil, apperr.New(apperr.KindInvalidPayload, "no issue ids given").WithField("issueIds", "required")
	}
	if len(issueIDs) > maxBulkIssues {
		return nil, apperr.New(apperr.KindInvalidPayload, "at most %d issues per bulk update", maxBulkIssues).
			WithField("issueIds", "max_200")
	}

	var issues []models.Issue
	if err := gdb.Where("id IN ?", issueIDs).Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("issue: bulk load: %w", err)
	}
	if len(issues) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no matching issues")
	}

	projectID := issues[0].ProjectID
	for _, iss := range issues[1:] {
		if iss.ProjectID != projectID {
			return nil, apperr.New(apperr.KindMixedProjects, "bulk updates must stay within one project")
		}
	}
	if err := project.RequireMember(gdb, projectID, actorID); err != nil {
		return nil, err
	}

	if p.SetAssignee != "" {
		if err := validateAssignee(gdb, projectID, p.SetAssignee); err != nil {
			return nil, err
		}
	}
	if p.SetSprint != "" {
		if err := validateSprint(gdb, projectID, p.SetSprint); err != nil {
			return nil, err
		}
	}

	uniform := make(map[string]interface{})
	switch {
	case p.SetAssignee != "":
		uniform["assignee_id"] = p.SetAssignee
	case p.ClearAssignee:
		uniform["assignee_id"] = nil
	}
	switch {
	case p.SetSprint != "":
		uniform["sprint_id"] = p.SetSprint
	case p.ClearSprint:
		uniform["sprint_id"] = nil
	}

	result := &BulkResult{Matched: int64(len(issues))}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if len(uniform) > 0 {
			res := tx.Model(&models.Issue{}).Where("id IN ?", issueIDs).Updates(uniform)
			if res.Error != nil {
				return fmt.Errorf("issue: bulk update: %w", res.Error)
			}
			result.Modified = res.RowsAffected
		}

		// Label and component edits are read-modify-write per issue since
		// the sets live in JSON columns.
		if len(p.AddLabels) > 0 || len(p.RemoveLabels) > 0 {
			for _, iss := range issues {
				next := applySetOps(models.DecodeStrings(iss.Labels), p.AddLabels, p.RemoveLabels)
				if len(next) > maxLabelsPerIssue {
					return apperr.New(apperr.KindInvalidPayload,
						"issue %s would exceed %d labels", iss.ID, maxLabelsPerIssue).
						WithField("addLabels", "max_50")
				}
				if err := tx.Model(&models.Issue{}).Where("id = ?", iss.ID).
					Update("labels", models.EncodeStrings(next)).Error; err != nil {
					return fmt.Errorf("issue: bulk labels on %s: %w", iss.ID, err)
				}
			}
			result.Modified = int64(len(issues))
		}
		if len(p.AddComponents) > 0 || len(p.RemoveComponents) > 0 {
			if err := project.ValidateComponents(tx, projectID, p.AddComponents); err != nil {
				return err
			}
			for _, iss := range issues {
				next := applySetOps(models.DecodeStrings(iss.Components), p.AddComponents, p.RemoveComponents)
				if err := tx.Model(&models.Issue{}).Where("id = ?", iss.ID).
					Update("components", models.EncodeStrings(next)).Error; err != nil {
					return fmt.Errorf("issue: bulk components on %s: %w", iss.ID, err)
				}
			}
			result.Modified = int64(len(issues))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: projectID,
		ActorID:   actorID,
		Kind:      models.ActIssueBulkUpdated,
		Meta:      activity.Meta{"count": len(issues)}.Encode(),
	})

	return result, nil
}

func applySetOps(current, add, remove []string) []string {
	set := make(map[string]bool, len(current))
	var out []string
	for _, v := range current {
		if !set[v] {
			set[v] = true
			out = append(out, v)
		}
	}
	for _, v := range add {
		if !set[v] {
			set[v] = true
			out = append(out, v)
		}
	}
	if len(remove) > 0 {
		rm := make(map[string]bool, len(remove))
		for _, v := range remove {
			rm[v] = true
		}
		filtered := out[:0]
		for _, v := range out {
			if !rm[v] {
				filtered = append(filtered, v)
			}
		}
		out = filtered
	}
	return out
}
