package issue

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// EpicRollup summarizes an epic's children: counts per status bucket and
// story-point totals.
type EpicRollup struct {
	EpicID      string
	EpicTitle   string
	TotalIssues int64
	DoneIssues  int64
	TotalPoints int64
	DonePoints  int64
}

// EpicRollups aggregates every epic in a project with its children's
// progress.
func EpicRollups(gdb *gorm.DB, projectID string) ([]EpicRollup, error) {
	var epics []models.Issue
	if err := gdb.Select("id, title").
		Where("project_id = ? AND type = ?", projectID, models.TypeEpic).
		Order("created_at ASC, id ASC").Find(&epics).Error; err != nil {
		return nil, fmt.Errorf("issue: list epics of %s: %w", projectID, err)
	}

	rollups := make([]EpicRollup, 0, len(epics))
	for _, epic := range epics {
		r := EpicRollup{EpicID: epic.ID, EpicTitle: epic.Title}

		type row struct {
			StatusKey string
			Count     int64
			Points    int64
		}
		var rows []row
		err := gdb.Model(&models.Issue{}).
			Select("status_key, COUNT(*) as count, COALESCE(SUM(story_points), 0) as points").
			Where("epic_id = ?", epic.ID).
			Group("status_key").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("issue: rollup epic %s: %w", epic.ID, err)
		}

		for _, rw := range rows {
			r.TotalIssues += rw.Count
			r.TotalPoints += rw.Points
			if rw.StatusKey == models.StatusDone {
				r.DoneIssues += rw.Count
				r.DonePoints += rw.Points
			}
		}
		rollups = append(rollups, r)
	}
	return rollups, nil
}
