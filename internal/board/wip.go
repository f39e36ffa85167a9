package board

import (
	"errors"
	"fmt"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// GetColumn loads a column by ID.
func GetColumn(gdb *gorm.DB, columnID string) (*models.Column, error) {
	var col models.Column
	if err := gdb.Where("id = ?", columnID).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindColumnNotFound, "column not found: %s", columnID)
		}
		return nil, fmt.Errorf("board: get column %s: %w", columnID, err)
	}
	return &col, nil
}

// SetWIPLimit sets or clears a column's WIP limit. It never evicts issues
// already over the limit; the limit only blocks new additions.
func SetWIPLimit(gdb *gorm.DB, columnID string, limit *int) error {
	if limit != nil && *limit < 0 {
		return apperr.New(apperr.KindInvalidPayload, "wip limit must not be negative").WithField("wipLimit", "non_negative")
	}
	if _, err := GetColumn(gdb, columnID); err != nil {
		return err
	}
	if err := gdb.Model(&models.Column{}).Where("id = ?", columnID).
		Update("wip_limit", limit).Error; err != nil {
		return fmt.Errorf("board: set wip limit on %s: %w", columnID, err)
	}
	return nil
}

// CheckWIP rejects an addition to the column when its WIP limit is already
// met. excludeIssueID (the issue being moved in) is not counted. Check-then-
// act: under concurrent writers the limit is best-effort, not linearizable.
func CheckWIP(gdb *gorm.DB, col *models.Column, excludeIssueID string) error {
	if col.WIPLimit == nil {
		return nil
	}
	q := gdb.Model(&models.Issue{}).Where("column_id = ?", col.ID)
	if excludeIssueID != "" {
		q = q.Where("id != ?", excludeIssueID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("board: count column %s: %w", col.ID, err)
	}
	if count >= int64(*col.WIPLimit) {
		return apperr.New(apperr.KindWIPLimitReached, "column %q is at its WIP limit of %d", col.Name, *col.WIPLimit)
	}
	return nil
}

// Get loads a board with its columns ordered by position.
func Get(gdb *gorm.DB, boardID string) (*models.Board, error) {
	var b models.Board
	err := gdb.Preload("Columns", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).Where("id = ?", boardID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "board not found: %s", boardID)
		}
		return nil, fmt.Errorf("board: get %s: %w", boardID, err)
	}
	return &b, nil
}

// ListForProject returns all boards of a project in creation order.
func ListForProject(gdb *gorm.DB, projectID string) ([]models.Board, error) {
	var boards []models.Board
	if err := gdb.Where("project_id = ?", projectID).Order("created_at ASC, id ASC").Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("board: list for project %s: %w", projectID, err)
	}
	return boards, nil
}

// FirstColumn returns the board's first column by position. Used by
// sprint-close automation to find the backlog destination.
func FirstColumn(gdb *gorm.DB, boardID string) (*models.Column, error) {
	var col models.Column
	if err := gdb.Where("board_id = ?", boardID).Order("position ASC").First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindColumnNotFound, "board %s has no columns", boardID)
		}
		return nil, fmt.Errorf("board: first column of %s: %w", boardID, err)
	}
	return &col, nil
}
