package issue

import (
	"fmt"
	"log"
	"strings"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/automation"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// Move places an issue at index within the destination column. The
// destination must be on the issue's board; the WIP limit counts only
// issues already there. Moving toward a done-mapped column is gated:
// stories need acceptance criteria, defects need a description. Nothing is
// written until every gate passes.
func Move(gdb *gorm.DB, actorID, issueID, columnID string, index int) error {
	iss, err := load(gdb, issueID)
	if err != nil {
		return err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}

	col, err := board.GetColumn(gdb, columnID)
	if err != nil {
		return err
	}
	if col.BoardID != iss.BoardID {
		return apperr.New(apperr.KindColumnNotFound, "column %s is not on the issue's board", columnID)
	}

	if col.ID != iss.ColumnID {
		if err := board.CheckWIP(gdb, col, iss.ID); err != nil {
			return err
		}
	}

	if col.StatusKey == models.StatusDone {
		if strings.EqualFold(iss.Type, models.TypeStory) && strings.TrimSpace(iss.AcceptanceCriteria) == "" {
			return apperr.New(apperr.KindMissingAcceptance,
				"story %q needs acceptance criteria before it can be done", iss.Title)
		}
		if strings.EqualFold(iss.Type, models.TypeDefect) && strings.TrimSpace(iss.Description) == "" {
			return apperr.New(apperr.KindMissingDescription,
				"defect %q needs a description before it can be done", iss.Title)
		}
	}

	pos, err := positionAt(gdb, col.ID, iss.ID, index)
	if err != nil {
		return err
	}

	err = gdb.Model(&models.Issue{}).Where("id = ?", iss.ID).Updates(map[string]interface{}{
		"column_id":  col.ID,
		"position":   pos,
		"status_key": col.StatusKey,
	}).Error
	if err != nil {
		return fmt.Errorf("issue: move %s: %w", iss.ID, err)
	}

	// Side effects observe the post-move state: re-read, then run
	// automation and fan-out in their own error boundary.
	fresh, err := load(gdb, iss.ID)
	if err != nil {
		log.Printf("issue: re-read after move %s: %v", iss.ID, err)
		return nil
	}

	trigger := automation.Trigger{Kind: models.TriggerIssueMoved, ToStatusKey: col.StatusKey}
	if _, err := automation.Apply(gdb, actorID, trigger, fresh); err != nil {
		log.Printf("issue: automation after move %s: %v", iss.ID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: fresh.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActIssueMoved,
		IssueID:   fresh.ID,
		Meta: activity.Meta{
			"issueTitle":  fresh.Title,
			"toColumnId":  col.ID,
			"toStatusKey": col.StatusKey,
		}.Encode(),
	})

	return nil
}
