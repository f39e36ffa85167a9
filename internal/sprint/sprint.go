// Package sprint provides the sprint lifecycle state machine: planned,
// active, closed. Closed is terminal.
package sprint

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/automation"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a sprint.
type CreateOpts struct {
	Name           string
	Goal           string
	StartDate      *time.Time
	EndDate        *time.Time
	CapacityPoints *int
}

// Create creates a sprint in the planned state.
func Create(gdb *gorm.DB, projectID, actorID string, opts CreateOpts) (*models.Sprint, error) {
	if err := project.RequireMember(gdb, projectID, actorID); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		return nil, apperr.New(apperr.KindInvalidPayload, "sprint name is required").WithField("name", "required")
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.EndDate.Before(*opts.StartDate) {
		return nil, apperr.New(apperr.KindInvalidPayload, "end date is before start date").WithField("endDate", "after_start")
	}

	id, err := db.NewID("sp")
	if err != nil {
		return nil, err
	}
	s := models.Sprint{
		ID:             id,
		ProjectID:      projectID,
		Name:           opts.Name,
		Goal:           opts.Goal,
		StartDate:      opts.StartDate,
		EndDate:        opts.EndDate,
		CapacityPoints: opts.CapacityPoints,
		State:          models.SprintPlanned,
	}
	if err := gdb.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("sprint: create: %w", err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: projectID,
		ActorID:   actorID,
		Kind:      models.ActSprintCreated,
		SprintID:  s.ID,
		Meta:      activity.Meta{"sprintName": s.Name}.Encode(),
	})

	return &s, nil
}

// Get loads a sprint.
func Get(gdb *gorm.DB, sprintID string) (*models.Sprint, error) {
	var s models.Sprint
	if err := gdb.Where("id = ?", sprintID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "sprint not found: %s", sprintID)
		}
		return nil, fmt.Errorf("sprint: get %s: %w", sprintID, err)
	}
	return &s, nil
}

// List returns a project's sprints, newest first.
func List(gdb *gorm.DB, projectID string) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := gdb.Where("project_id = ?", projectID).Order("created_at DESC, id DESC").Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("sprint: list for %s: %w", projectID, err)
	}
	return sprints, nil
}

// UpdateOpts is a partial sprint patch. Nil fields are untouched.
type UpdateOpts struct {
	Name           *string
	Goal           *string
	StartDate      *time.Time
	EndDate        *time.Time
	CapacityPoints *int
}

// Update patches a sprint's descriptive fields. Closed sprints are
// immutable.
func Update(gdb *gorm.DB, sprintID, actorID string, opts UpdateOpts) error {
	s, err := Get(gdb, sprintID)
	if err != nil {
		return err
	}
	if err := project.RequireMember(gdb, s.ProjectID, actorID); err != nil {
		return err
	}
	if s.State == models.SprintClosed {
		return apperr.New(apperr.KindForbidden, "sprint %s is closed", sprintID)
	}

	updates := make(map[string]interface{})
	if opts.Name != nil {
		if *opts.Name == "" {
			return apperr.New(apperr.KindInvalidPayload, "sprint name must not be empty").WithField("name", "required")
		}
		updates["name"] = *opts.Name
	}
	if opts.Goal != nil {
		updates["goal"] = *opts.Goal
	}
	if opts.StartDate != nil {
		updates["start_date"] = *opts.StartDate
	}
	if opts.EndDate != nil {
		updates["end_date"] = *opts.EndDate
	}
	if opts.CapacityPoints != nil {
		updates["capacity_points"] = *opts.CapacityPoints
	}
	if len(updates) == 0 {
		return nil
	}

	if err := gdb.Model(&models.Sprint{}).Where("id = ?", sprintID).Updates(updates).Error; err != nil {
		return fmt.Errorf("sprint: update %s: %w", sprintID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: s.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActSprintUpdated,
		SprintID:  s.ID,
		Meta:      activity.Meta{"sprintName": s.Name}.Encode(),
	})

	return nil
}

// SetActive promotes a sprint to active, demoting any other active sprint
// in the project to planned inside the same transaction so readers never
// durably observe two active sprints.
func SetActive(gdb *gorm.DB, sprintID, actorID string) error {
	s, err := Get(gdb, sprintID)
	if err != nil {
		return err
	}
	if err := project.RequireMember(gdb, s.ProjectID, actorID); err != nil {
		return err
	}
	if s.State == models.SprintClosed {
		return apperr.New(apperr.KindForbidden, "sprint %s is closed and cannot be activated", sprintID)
	}
	if s.State == models.SprintActive {
		return nil
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Sprint{}).
			Where("project_id = ? AND state = ? AND id != ?", s.ProjectID, models.SprintActive, sprintID).
			Update("state", models.SprintPlanned).Error; err != nil {
			return fmt.Errorf("sprint: demote active in %s: %w", s.ProjectID, err)
		}
		if err := tx.Model(&models.Sprint{}).Where("id = ?", sprintID).
			Update("state", models.SprintActive).Error; err != nil {
			return fmt.Errorf("sprint: activate %s: %w", sprintID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: s.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActSprintActivated,
		SprintID:  s.ID,
		Meta:      activity.Meta{"sprintName": s.Name}.Encode(),
	})

	return nil
}

// Close closes a sprint. Owner-only. Without force, the close is rejected
// while not-done issues remain on the sprint, reporting their count. On
// success sprint_closed automation runs, which may sweep the open issues
// back to their boards' first columns.
func Close(gdb *gorm.DB, sprintID, actorID string, force bool) error {
	s, err := Get(gdb, sprintID)
	if err != nil {
		return err
	}
	if err := project.RequireOwner(gdb, s.ProjectID, actorID); err != nil {
		return err
	}
	if s.State == models.SprintClosed {
		return apperr.New(apperr.KindForbidden, "sprint %s is already closed", sprintID)
	}

	var openCount int64
	if err := gdb.Model(&models.Issue{}).
		Where("sprint_id = ? AND status_key != ?", sprintID, models.StatusDone).
		Count(&openCount).Error; err != nil {
		return fmt.Errorf("sprint: count open issues of %s: %w", sprintID, err)
	}
	if !force && openCount > 0 {
		return apperr.New(apperr.KindSprintHasOpenWork,
			"sprint has %d issues not yet done; close with force to override", openCount).
			WithField("openIssues", fmt.Sprintf("%d", openCount))
	}

	if err := gdb.Model(&models.Sprint{}).Where("id = ?", sprintID).
		Update("state", models.SprintClosed).Error; err != nil {
		return fmt.Errorf("sprint: close %s: %w", sprintID, err)
	}
	s.State = models.SprintClosed

	if _, err := automation.ApplySprintClosed(gdb, actorID, s); err != nil {
		log.Printf("sprint: automation after close %s: %v", sprintID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: s.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActSprintClosed,
		SprintID:  s.ID,
		Meta:      activity.Meta{"sprintName": s.Name, "openIssues": openCount}.Encode(),
	})

	return nil
}
