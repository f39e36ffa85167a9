package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// List returns a user's notifications in a project, newest first.
func List(gdb *gorm.DB, projectID, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := gdb.Where("project_id = ? AND user_id = ?", projectID, userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var notifs []models.Notification
	if err := q.Order("created_at DESC, id DESC").Find(&notifs).Error; err != nil {
		return nil, fmt.Errorf("notify: list for %s: %w", userID, err)
	}
	return notifs, nil
}

// UnreadCount returns the number of unread notifications for a user in a
// project.
func UnreadCount(gdb *gorm.DB, projectID, userID string) (int64, error) {
	var count int64
	err := gdb.Model(&models.Notification{}).
		Where("project_id = ? AND user_id = ? AND read_at IS NULL", projectID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("notify: unread count for %s: %w", userID, err)
	}
	return count, nil
}

// MarkRead sets ReadAt on one notification. Only the recipient may mark
// their own notification.
func MarkRead(gdb *gorm.DB, notificationID, userID string) error {
	var n models.Notification
	if err := gdb.Where("id = ?", notificationID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "notification not found: %s", notificationID)
		}
		return fmt.Errorf("notify: get %s: %w", notificationID, err)
	}
	if n.UserID != userID {
		return apperr.New(apperr.KindForbidden, "notification %s does not belong to %s", notificationID, userID)
	}
	now := time.Now().UTC()
	if err := gdb.Model(&models.Notification{}).Where("id = ?", notificationID).
		Update("read_at", now).Error; err != nil {
		return fmt.Errorf("notify: mark read %s: %w", notificationID, err)
	}
	return nil
}

// MarkAllRead stamps every unread notification for the user in the project
// in a single bulk update.
func MarkAllRead(gdb *gorm.DB, projectID, userID string) (int64, error) {
	now := time.Now().UTC()
	result := gdb.Model(&models.Notification{}).
		Where("project_id = ? AND user_id = ? AND read_at IS NULL", projectID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return 0, fmt.Errorf("notify: mark all read for %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
