// Package notify owns the watch registry, mention resolution, and
// notification fan-out driven by the activity log.
package notify

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// SetWatch toggles a watch. An empty issueID watches the whole project.
// Row presence is the only state: disabling deletes the row, so toggling
// is idempotent in both directions.
func SetWatch(gdb *gorm.DB, projectID, userID, issueID string, enabled bool) error {
	if !enabled {
		err := gdb.Where("project_id = ? AND user_id = ? AND issue_id = ?", projectID, userID, issueID).
			Delete(&models.Watch{}).Error
		if err != nil {
			return fmt.Errorf("notify: unwatch: %w", err)
		}
		return nil
	}

	var count int64
	if err := gdb.Model(&models.Watch{}).
		Where("project_id = ? AND user_id = ? AND issue_id = ?", projectID, userID, issueID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("notify: check watch: %w", err)
	}
	if count > 0 {
		return nil
	}

	w := models.Watch{ProjectID: projectID, UserID: userID, IssueID: issueID}
	if err := gdb.Create(&w).Error; err != nil {
		return fmt.Errorf("notify: watch: %w", err)
	}
	return nil
}

// watcherIDs returns the union of project-level watchers and watchers of
// the given issue (when issueID is non-empty).
func watcherIDs(gdb *gorm.DB, projectID, issueID string) ([]string, error) {
	q := gdb.Model(&models.Watch{}).Distinct("user_id").Where("project_id = ?", projectID)
	if issueID == "" {
		q = q.Where("issue_id = ?", "")
	} else {
		q = q.Where("issue_id IN ?", []string{"", issueID})
	}
	var ids []string
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("notify: watchers: %w", err)
	}
	return ids, nil
}
