// Package digest produces scheduled unread-notification summaries. The
// serve daemon runs Scheduler; each sweep creates at most one digest
// notification per user per project.
package digest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns an error on a bad expression so
// misconfiguration surfaces at startup, not silently.
func NextDuration(expr string, now time.Time) (time.Duration, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0, fmt.Errorf("digest: parse cron %q: %w", expr, err)
	}
	d := sched.Next(now).Sub(now)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Summary is one user's unread backlog in one project.
type Summary struct {
	ProjectID string
	UserID    string
	Unread    int64
}

// Summaries returns every (project, user) pair whose unread notification
// count is at least minUnread, excluding unread digests themselves so a
// digest never triggers the next one.
func Summaries(gdb *gorm.DB, minUnread int) ([]Summary, error) {
	var sums []Summary
	err := gdb.Model(&models.Notification{}).
		Select("project_id, user_id, COUNT(*) as unread").
		Where("read_at IS NULL AND kind != ?", models.NotifyDigest).
		Group("project_id, user_id").
		Having("COUNT(*) >= ?", minUnread).
		Order("project_id ASC, user_id ASC").
		Find(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("digest: summaries: %w", err)
	}
	return sums, nil
}

// Sweep creates one digest notification per qualifying user. Users with
// an unread digest already pending are skipped.
func Sweep(gdb *gorm.DB, minUnread int) (int, error) {
	sums, err := Summaries(gdb, minUnread)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, s := range sums {
		var pending int64
		err := gdb.Model(&models.Notification{}).
			Where("project_id = ? AND user_id = ? AND kind = ? AND read_at IS NULL",
				s.ProjectID, s.UserID, models.NotifyDigest).
			Count(&pending).Error
		if err != nil {
			return created, fmt.Errorf("digest: pending check: %w", err)
		}
		if pending > 0 {
			continue
		}

		id, err := db.NewID("ntf")
		if err != nil {
			return created, err
		}
		n := models.Notification{
			ID:        id,
			ProjectID: s.ProjectID,
			UserID:    s.UserID,
			Kind:      models.NotifyDigest,
			Title:     fmt.Sprintf("You have %d unread notifications", s.Unread),
			CreatedAt: time.Now().UTC(),
		}
		if err := gdb.Create(&n).Error; err != nil {
			return created, fmt.Errorf("digest: create for %s: %w", s.UserID, err)
		}
		created++
	}
	return created, nil
}

// Scheduler runs Sweep on the cron schedule until ctx is cancelled.
// Sweep failures are logged and the schedule continues.
func Scheduler(ctx context.Context, gdb *gorm.DB, cronExpr string, minUnread int) error {
	for {
		wait, err := NextDuration(cronExpr, time.Now())
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if created, err := Sweep(gdb, minUnread); err != nil {
			log.Printf("digest: sweep: %v", err)
		} else if created > 0 {
			log.Printf("digest: created %d digest notifications", created)
		}
	}
}
