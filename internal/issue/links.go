package issue

import (
	"errors"
	"fmt"
	"log"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/automation"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

func validLinkType(t string) bool {
	switch t {
	case models.LinkBlocks, models.LinkBlockedBy, models.LinkRelatesTo:
		return true
	}
	return false
}

// AddLink creates a directed link between two issues in the same project.
func AddLink(gdb *gorm.DB, actorID, issueID, linkType, otherIssueID string) error {
	if issueID == otherIssueID {
		return apperr.New(apperr.KindCannotLinkSelf, "an issue cannot link to itself")
	}
	if !validLinkType(linkType) {
		return apperr.New(apperr.KindInvalidPayload, "unknown link type %q", linkType).WithField("type", "enum")
	}

	iss, err := load(gdb, issueID)
	if err != nil {
		return err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}

	var other models.Issue
	if err := gdb.Select("id, project_id").Where("id = ?", otherIssueID).First(&other).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindInvalidOtherIssue, "issue not found: %s", otherIssueID)
		}
		return fmt.Errorf("issue: get link target %s: %w", otherIssueID, err)
	}
	if other.ProjectID != iss.ProjectID {
		return apperr.New(apperr.KindInvalidOtherIssue, "issue %s is not in the same project", otherIssueID)
	}

	link := models.IssueLink{IssueID: issueID, Type: linkType, OtherIssueID: otherIssueID}
	if err := gdb.Create(&link).Error; err != nil {
		if db.IsDuplicate(err) {
			return nil // link already present
		}
		return fmt.Errorf("issue: add link %s -> %s: %w", issueID, otherIssueID, err)
	}

	finishLinkChange(gdb, actorID, issueID, linkType, otherIssueID, models.TriggerIssueLinkAdded, models.ActLinkAdded)
	return nil
}

// RemoveLink deletes a link.
func RemoveLink(gdb *gorm.DB, actorID, issueID, linkType, otherIssueID string) error {
	iss, err := load(gdb, issueID)
	if err != nil {
		return err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}

	result := gdb.Where("issue_id = ? AND type = ? AND other_issue_id = ?", issueID, linkType, otherIssueID).
		Delete(&models.IssueLink{})
	if result.Error != nil {
		return fmt.Errorf("issue: remove link %s -> %s: %w", issueID, otherIssueID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "link not found")
	}

	finishLinkChange(gdb, actorID, issueID, linkType, otherIssueID, models.TriggerIssueLinkRemoved, models.ActLinkRemoved)
	return nil
}

// finishLinkChange runs the post-commit side effects of a link change:
// automation re-evaluation against the fresh issue, then activity and
// fan-out. Failures are logged, never propagated.
func finishLinkChange(gdb *gorm.DB, actorID, issueID, linkType, otherIssueID, triggerKind, activityKind string) {
	fresh, err := load(gdb, issueID)
	if err != nil {
		log.Printf("issue: re-read after link change %s: %v", issueID, err)
		return
	}

	trigger := automation.Trigger{Kind: triggerKind, LinkType: linkType}
	if _, err := automation.Apply(gdb, actorID, trigger, fresh); err != nil {
		log.Printf("issue: automation after link change %s: %v", issueID, err)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: fresh.ProjectID,
		ActorID:   actorID,
		Kind:      activityKind,
		IssueID:   fresh.ID,
		Meta: activity.Meta{
			"issueTitle":   fresh.Title,
			"linkType":     linkType,
			"otherIssueId": otherIssueID,
		}.Encode(),
	})
}
