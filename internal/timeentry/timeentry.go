// Package timeentry records minutes worked against issues and aggregates
// them into rollups.
package timeentry

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// maxMinutesPerEntry caps a single entry at one day.
const maxMinutesPerEntry = 1440

// LogOpts holds parameters for logging time against an issue.
type LogOpts struct {
	Minutes  int
	Billable bool
	Note     string
	WorkDate time.Time
}

// Log records a time entry. WorkDate is normalized to midnight UTC; a zero
// WorkDate means today.
func Log(gdb *gorm.DB, actorID, issueID string, opts LogOpts) (*models.TimeEntry, error) {
	if opts.Minutes < 1 || opts.Minutes > maxMinutesPerEntry {
		return nil, apperr.New(apperr.KindInvalidPayload, "minutes must be between 1 and %d", maxMinutesPerEntry).
			WithField("minutes", "range_1_1440")
	}

	var iss models.Issue
	if err := gdb.Select("id, project_id, title").Where("id = ?", issueID).First(&iss).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
		}
		return nil, fmt.Errorf("timeentry: get issue %s: %w", issueID, err)
	}
	if err := project.RequireMember(gdb, iss.ProjectID, actorID); err != nil {
		return nil, err
	}

	workDate := opts.WorkDate
	if workDate.IsZero() {
		workDate = time.Now()
	}
	workDate = normalizeDay(workDate)

	id, err := db.NewID("te")
	if err != nil {
		return nil, err
	}
	entry := models.TimeEntry{
		ID:        id,
		ProjectID: iss.ProjectID,
		IssueID:   iss.ID,
		UserID:    actorID,
		Minutes:   opts.Minutes,
		Billable:  opts.Billable,
		Note:      opts.Note,
		WorkDate:  workDate,
	}
	if err := gdb.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("timeentry: log: %w", err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: iss.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActTimeLogged,
		IssueID:   iss.ID,
		Meta:      activity.Meta{"issueTitle": iss.Title, "minutes": opts.Minutes}.Encode(),
	})

	return &entry, nil
}

// UpdateOpts is a partial time-entry patch.
type UpdateOpts struct {
	Minutes  *int
	Billable *bool
	Note     *string
	WorkDate *time.Time
}

// Update patches a time entry. Only the author or the project owner may
// modify it.
func Update(gdb *gorm.DB, actorID, entryID string, opts UpdateOpts) error {
	entry, err := get(gdb, entryID)
	if err != nil {
		return err
	}
	if err := requireAuthorOrOwner(gdb, entry, actorID); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if opts.Minutes != nil {
		if *opts.Minutes < 1 || *opts.Minutes > maxMinutesPerEntry {
			return apperr.New(apperr.KindInvalidPayload, "minutes must be between 1 and %d", maxMinutesPerEntry).
				WithField("minutes", "range_1_1440")
		}
		updates["minutes"] = *opts.Minutes
	}
	if opts.Billable != nil {
		updates["billable"] = *opts.Billable
	}
	if opts.Note != nil {
		updates["note"] = *opts.Note
	}
	if opts.WorkDate != nil {
		updates["work_date"] = normalizeDay(*opts.WorkDate)
	}
	if len(updates) == 0 {
		return nil
	}

	if err := gdb.Model(&models.TimeEntry{}).Where("id = ?", entryID).Updates(updates).Error; err != nil {
		return fmt.Errorf("timeentry: update %s: %w", entryID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: entry.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActTimeUpdated,
		IssueID:   entry.IssueID,
		Meta:      activity.Meta{"entryId": entry.ID}.Encode(),
	})

	return nil
}

// Delete removes a time entry. Only the author or the project owner.
func Delete(gdb *gorm.DB, actorID, entryID string) error {
	entry, err := get(gdb, entryID)
	if err != nil {
		return err
	}
	if err := requireAuthorOrOwner(gdb, entry, actorID); err != nil {
		return err
	}

	if err := gdb.Where("id = ?", entryID).Delete(&models.TimeEntry{}).Error; err != nil {
		return fmt.Errorf("timeentry: delete %s: %w", entryID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: entry.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActTimeDeleted,
		IssueID:   entry.IssueID,
		Meta:      activity.Meta{"entryId": entry.ID}.Encode(),
	})

	return nil
}

// Rollup is an aggregated time view for one user on one day.
type Rollup struct {
	UserID          string
	WorkDate        time.Time
	TotalMinutes    int64
	BillableMinutes int64
}

// RollupFilters narrows a rollup query.
type RollupFilters struct {
	UserID  string
	IssueID string
	From    *time.Time
	To      *time.Time
}

// Rollups aggregates a project's time entries per user per day.
func Rollups(gdb *gorm.DB, projectID string, f RollupFilters) ([]Rollup, error) {
	q := gdb.Model(&models.TimeEntry{}).
		Select("user_id, work_date, SUM(minutes) as total_minutes, SUM(CASE WHEN billable THEN minutes ELSE 0 END) as billable_minutes").
		Where("project_id = ?", projectID)
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.IssueID != "" {
		q = q.Where("issue_id = ?", f.IssueID)
	}
	if f.From != nil {
		q = q.Where("work_date >= ?", normalizeDay(*f.From))
	}
	if f.To != nil {
		q = q.Where("work_date <= ?", normalizeDay(*f.To))
	}

	var rollups []Rollup
	if err := q.Group("user_id, work_date").Order("work_date ASC, user_id ASC").Find(&rollups).Error; err != nil {
		return nil, fmt.Errorf("timeentry: rollups for %s: %w", projectID, err)
	}
	return rollups, nil
}

func get(gdb *gorm.DB, entryID string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := gdb.Where("id = ?", entryID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "time entry not found: %s", entryID)
		}
		return nil, fmt.Errorf("timeentry: get %s: %w", entryID, err)
	}
	return &entry, nil
}

func requireAuthorOrOwner(gdb *gorm.DB, entry *models.TimeEntry, actorID string) error {
	if entry.UserID == actorID || project.IsOwner(gdb, entry.ProjectID, actorID) {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "only the author or the project owner may change this entry")
}

// normalizeDay truncates a timestamp to midnight UTC.
func normalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
