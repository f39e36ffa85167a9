package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// Sink receives a copy of every created notification. Delivery transports
// (chat, email, webhooks) live outside the engine and plug in here.
type Sink interface {
	Deliver(n *models.Notification) error
}

// Emit records a domain event and fans out notifications for it. Both
// steps are best-effort side effects of an already-committed primary write:
// failures are logged, never returned, so they can never fail the
// operation that produced the event.
func Emit(gdb *gorm.DB, ev *models.Activity, sinks ...Sink) {
	if err := activity.Record(gdb, ev); err != nil {
		log.Printf("notify: record activity %s: %v", ev.Kind, err)
		return
	}
	if err := FanOut(gdb, ev, sinks...); err != nil {
		log.Printf("notify: fan out %s: %v", ev.Kind, err)
	}
}

// FanOut creates one notification per recipient for an activity event.
// Recipients are project watchers, issue watchers, mentioned users, and any
// explicit notifyUserIds in the event meta, minus the actor. Mentioned
// users additionally receive a mentioned-kind notification: a mention is
// never folded into the generic watcher copy.
func FanOut(gdb *gorm.DB, ev *models.Activity, sinks ...Sink) error {
	watchers, err := watcherIDs(gdb, ev.ProjectID, ev.IssueID)
	if err != nil {
		return err
	}

	meta := activity.DecodeMeta(ev.Meta)
	mentioned := meta.StringsAt("mentions")
	explicit := meta.StringsAt("notifyUserIds")

	recipients := make(map[string]bool)
	for _, id := range watchers {
		recipients[id] = true
	}
	for _, id := range mentioned {
		recipients[id] = true
	}
	for _, id := range explicit {
		recipients[id] = true
	}
	delete(recipients, ev.ActorID)

	title, body := render(ev, meta)

	for userID := range recipients {
		if err := createNotification(gdb, ev, userID, ev.Kind, title, body, sinks); err != nil {
			return err
		}
	}
	for _, userID := range mentioned {
		if userID == ev.ActorID {
			continue
		}
		mTitle := fmt.Sprintf("You were mentioned by %s", ev.ActorID)
		if err := createNotification(gdb, ev, userID, models.NotifyMentioned, mTitle, body, sinks); err != nil {
			return err
		}
	}
	return nil
}

func createNotification(gdb *gorm.DB, ev *models.Activity, userID, kind, title, body string, sinks []Sink) error {
	id, err := db.NewID("ntf")
	if err != nil {
		return err
	}
	n := models.Notification{
		ID:        id,
		ProjectID: ev.ProjectID,
		UserID:    userID,
		Kind:      kind,
		ActorID:   ev.ActorID,
		IssueID:   ev.IssueID,
		SprintID:  ev.SprintID,
		Title:     title,
		Body:      body,
		Meta:      ev.Meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := gdb.Create(&n).Error; err != nil {
		return fmt.Errorf("notify: create for %s: %w", userID, err)
	}
	for _, s := range sinks {
		if err := s.Deliver(&n); err != nil {
			log.Printf("notify: sink delivery for %s: %v", userID, err)
		}
	}
	return nil
}

// render templates a human-readable title and body from the event kind.
func render(ev *models.Activity, meta activity.Meta) (title, body string) {
	subject := metaString(meta, "issueTitle")
	if subject == "" {
		subject = metaString(meta, "sprintName")
	}

	switch ev.Kind {
	case models.ActIssueCreated:
		title = fmt.Sprintf("%s created issue %q", ev.ActorID, subject)
	case models.ActIssueMoved:
		title = fmt.Sprintf("%s moved %q to %s", ev.ActorID, subject, metaString(meta, "toStatusKey"))
	case models.ActIssueUpdated:
		title = fmt.Sprintf("%s updated issue %q", ev.ActorID, subject)
	case models.ActIssueCommented:
		title = fmt.Sprintf("%s commented on %q", ev.ActorID, subject)
		body = metaString(meta, "comment")
	case models.ActIssueBulkUpdated:
		title = fmt.Sprintf("%s bulk-updated %s issues", ev.ActorID, metaString(meta, "count"))
	case models.ActLinkAdded:
		title = fmt.Sprintf("%s linked %q (%s)", ev.ActorID, subject, metaString(meta, "linkType"))
	case models.ActLinkRemoved:
		title = fmt.Sprintf("%s removed a %s link from %q", ev.ActorID, metaString(meta, "linkType"), subject)
	case models.ActSprintCreated:
		title = fmt.Sprintf("%s created sprint %q", ev.ActorID, subject)
	case models.ActSprintUpdated:
		title = fmt.Sprintf("%s updated sprint %q", ev.ActorID, subject)
	case models.ActSprintActivated:
		title = fmt.Sprintf("%s started sprint %q", ev.ActorID, subject)
	case models.ActSprintClosed:
		title = fmt.Sprintf("%s closed sprint %q", ev.ActorID, subject)
	case models.ActTimeLogged:
		title = fmt.Sprintf("%s logged time on %q", ev.ActorID, subject)
	case models.ActTimeUpdated:
		title = fmt.Sprintf("%s updated a time entry on %q", ev.ActorID, subject)
	case models.ActTimeDeleted:
		title = fmt.Sprintf("%s deleted a time entry on %q", ev.ActorID, subject)
	case models.ActAutomationApplied:
		title = fmt.Sprintf("Rule %q fired on %q", metaString(meta, "ruleName"), subject)
	default:
		title = fmt.Sprintf("%s: %s", ev.ActorID, ev.Kind)
	}
	return title, body
}

func metaString(meta activity.Meta, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int:
		return fmt.Sprintf("%d", v)
	}
	return ""
}
