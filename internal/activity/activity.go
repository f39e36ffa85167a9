// Package activity maintains the append-only domain event log. Activity is
// the single integration point: automation writes its audit trail here and
// notification fan-out consumes each entry.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// Meta is the free-form metadata attached to an event. Well-known keys:
// "mentions" and "notifyUserIds" (string arrays consumed by fan-out),
// "ruleId"/"ruleName" on automation_applied events.
type Meta map[string]interface{}

// Encode marshals meta for the JSON column. Nil encodes to "{}".
func (m Meta) Encode() string {
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// DecodeMeta parses an event's meta column. Invalid JSON decodes to an
// empty map rather than failing a read path.
func DecodeMeta(raw string) Meta {
	m := Meta{}
	if raw == "" {
		return m
	}
	_ = json.Unmarshal([]byte(raw), &m)
	return m
}

// StringsAt returns the string-array value at key, tolerating the
// []interface{} shape json.Unmarshal produces.
func (m Meta) StringsAt(key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Record appends one event. Callers on side-effect paths wrap this in
// their own error boundary; Record itself never swallows failures.
func Record(gdb *gorm.DB, ev *models.Activity) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Meta == "" {
		ev.Meta = "{}"
	}
	if err := gdb.Create(ev).Error; err != nil {
		return fmt.Errorf("activity: record %s: %w", ev.Kind, err)
	}
	return nil
}

// ListFilters narrows an activity listing.
type ListFilters struct {
	Kind    string
	IssueID string
	ActorID string
	Since   *time.Time
	Limit   int
}

// List returns a project's events, newest first.
func List(gdb *gorm.DB, projectID string, f ListFilters) ([]models.Activity, error) {
	q := gdb.Where("project_id = ?", projectID)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.IssueID != "" {
		q = q.Where("issue_id = ?", f.IssueID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var events []models.Activity
	if err := q.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("activity: list for %s: %w", projectID, err)
	}
	return events, nil
}
