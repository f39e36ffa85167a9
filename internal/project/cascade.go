package project

import (
	"errors"
	"fmt"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// CascadeDelete removes a project and every child entity, children before
// the project row, and reports a per-collection count. Each step is a
// "delete where project_id" and is safe to re-run, so a partial cascade can
// be completed by retrying; no cross-collection transaction is assumed.
func CascadeDelete(gdb *gorm.DB, projectID string) (map[string]int64, error) {
	var proj models.Project
	if err := gdb.Where("id = ?", projectID).First(&proj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "project not found: %s", projectID)
		}
		return nil, fmt.Errorf("project: get %s for delete: %w", projectID, err)
	}

	counts := make(map[string]int64)

	steps := []struct {
		name  string
		model interface{}
	}{
		{"comments", &models.Comment{}},
		{"time_entries", &models.TimeEntry{}},
		{"watches", &models.Watch{}},
		{"notifications", &models.Notification{}},
		{"activity", &models.Activity{}},
		{"automation_rules", &models.AutomationRule{}},
		{"issues", &models.Issue{}},
		{"sprints", &models.Sprint{}},
		{"components", &models.Component{}},
		{"members", &models.Member{}},
	}

	// Issue links key on issue id, not project id.
	linkResult := gdb.Where("issue_id IN (?)",
		gdb.Model(&models.Issue{}).Select("id").Where("project_id = ?", projectID),
	).Delete(&models.IssueLink{})
	if linkResult.Error != nil {
		return counts, fmt.Errorf("project: cascade links of %s: %w", projectID, linkResult.Error)
	}
	counts["issue_links"] = linkResult.RowsAffected

	for _, step := range steps {
		result := gdb.Where("project_id = ?", projectID).Delete(step.model)
		if result.Error != nil {
			return counts, fmt.Errorf("project: cascade %s of %s: %w", step.name, projectID, result.Error)
		}
		counts[step.name] = result.RowsAffected
	}

	// Columns key on board id.
	colResult := gdb.Where("board_id IN (?)",
		gdb.Model(&models.Board{}).Select("id").Where("project_id = ?", projectID),
	).Delete(&models.Column{})
	if colResult.Error != nil {
		return counts, fmt.Errorf("project: cascade columns of %s: %w", projectID, colResult.Error)
	}
	counts["columns"] = colResult.RowsAffected

	boardResult := gdb.Where("project_id = ?", projectID).Delete(&models.Board{})
	if boardResult.Error != nil {
		return counts, fmt.Errorf("project: cascade boards of %s: %w", projectID, boardResult.Error)
	}
	counts["boards"] = boardResult.RowsAffected

	if err := gdb.Where("id = ?", projectID).Delete(&models.Project{}).Error; err != nil {
		return counts, fmt.Errorf("project: delete %s: %w", projectID, err)
	}
	counts["projects"] = 1
	return counts, nil
}
