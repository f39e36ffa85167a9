package issue

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// AddComment appends a comment to an issue. The body is scanned for
// @mentions against the project membership and the resolved user ids ride
// on the activity event's meta, where fan-out picks them up.
func AddComment(gdb *gorm.DB, actorID, issueID, body string) (*models.Comment, error) {
	if body == "" {
		return nil, apperr.New(apperr.KindInvalidPayload, "comment body is required").WithField("body", "required")
	}

	iss, err := load(gdb, issueID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(gdb, iss.ProjectID, actorID) {
		return nil, apperr.New(apperr.KindNotFound, "issue not found: %s", issueID)
	}

	id, err := db.NewID("cm")
	if err != nil {
		return nil, err
	}
	comment := models.Comment{
		ID:        id,
		IssueID:   iss.ID,
		ProjectID: iss.ProjectID,
		AuthorID:  actorID,
		Body:      body,
	}
	if err := gdb.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("issue: comment on %s: %w", issueID, err)
	}

	var mentions []string
	if members, err := project.Members(gdb, iss.ProjectID); err == nil {
		mentions = notify.ExtractMentions(body, members)
	}

	notify.Emit(gdb, &models.Activity{
		ProjectID: iss.ProjectID,
		ActorID:   actorID,
		Kind:      models.ActIssueCommented,
		IssueID:   iss.ID,
		Meta: activity.Meta{
			"issueTitle": iss.Title,
			"commentId":  comment.ID,
			"comment":    body,
			"mentions":   mentions,
		}.Encode(),
	})

	return &comment, nil
}

// Comments returns an issue's comments oldest first.
func Comments(gdb *gorm.DB, issueID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := gdb.Where("issue_id = ?", issueID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("issue: comments of %s: %w", issueID, err)
	}
	return comments, nil
}
