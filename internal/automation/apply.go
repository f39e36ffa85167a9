package automation

import (
	"fmt"
	"log"
	"strings"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/notify"
	"gorm.io/gorm"
)

// maxIssueLabels mirrors the issue package's per-issue label cap.
const maxIssueLabels = 50

// Trigger is the event that fired: which kind, and the qualifiers a rule
// may match against.
type Trigger struct {
	Kind        string
	ToStatusKey string // issue_moved
	LinkType    string // issue_link_added / issue_link_removed
}

// Apply evaluates a project's enabled rules against a fresh read of the
// subject issue and executes matching label actions. Returns the number of
// applied rules. Each applied rule appends one automation_applied event so
// automation stays auditable.
//
// Callers invoke Apply after the primary write has been acknowledged and
// the issue re-read, so rules always observe post-transition state.
func Apply(gdb *gorm.DB, actorID string, trigger Trigger, iss *models.Issue) (int, error) {
	var rules []models.AutomationRule
	err := gdb.Where("project_id = ? AND enabled = ? AND trigger_kind = ?",
		iss.ProjectID, true, trigger.Kind).
		Order("created_at ASC, id ASC").Find(&rules).Error
	if err != nil {
		return 0, fmt.Errorf("automation: load rules: %w", err)
	}

	applied := 0
	for _, rule := range rules {
		if !triggerMatches(&rule, trigger) {
			continue
		}
		if !conditionsMatch(gdb, &rule, iss) {
			continue
		}

		addLabels := models.DecodeStrings(rule.ActionAddLabels)
		removeLabels := models.DecodeStrings(rule.ActionRemoveLabels)
		if len(addLabels) == 0 && len(removeLabels) == 0 {
			// A rule with no label action is a no-op for issue triggers.
			continue
		}

		newLabels := applyLabelActions(models.DecodeStrings(iss.Labels), addLabels, removeLabels)
		if len(newLabels) > maxIssueLabels {
			// The per-issue label cap binds automation too; the rule is
			// skipped rather than failing the triggering write.
			log.Printf("automation: rule %s would push issue %s past %d labels, skipping",
				rule.ID, iss.ID, maxIssueLabels)
			continue
		}
		encoded := models.EncodeStrings(newLabels)
		if err := gdb.Model(&models.Issue{}).Where("id = ?", iss.ID).
			Update("labels", encoded).Error; err != nil {
			return applied, fmt.Errorf("automation: apply rule %s: %w", rule.ID, err)
		}
		iss.Labels = encoded
		applied++

		notify.Emit(gdb, &models.Activity{
			ProjectID: iss.ProjectID,
			ActorID:   actorID,
			Kind:      models.ActAutomationApplied,
			IssueID:   iss.ID,
			Meta: activity.Meta{
				"ruleId":     rule.ID,
				"ruleName":   rule.Name,
				"trigger":    trigger.Kind,
				"issueTitle": iss.Title,
			}.Encode(),
		})
	}
	return applied, nil
}

// ApplySprintClosed is the separate entry point for sprint_closed rules,
// whose action targets the set of still-open sprint issues rather than one
// subject. For each board represented among those issues, the issues move
// to that board's first column and drop off the sprint in one batched
// update per board. The rule application is logged even when there was
// nothing to move, so automation history stays complete.
func ApplySprintClosed(gdb *gorm.DB, actorID string, sprint *models.Sprint) (int, error) {
	var rules []models.AutomationRule
	err := gdb.Where("project_id = ? AND enabled = ? AND trigger_kind = ?",
		sprint.ProjectID, true, models.TriggerSprintClosed).
		Order("created_at ASC, id ASC").Find(&rules).Error
	if err != nil {
		return 0, fmt.Errorf("automation: load sprint rules: %w", err)
	}

	applied := 0
	for _, rule := range rules {
		if !rule.ActionMoveOpenToBacklog {
			continue
		}

		if err := moveOpenIssuesToBacklog(gdb, sprint); err != nil {
			return applied, err
		}
		applied++

		notify.Emit(gdb, &models.Activity{
			ProjectID: sprint.ProjectID,
			ActorID:   actorID,
			Kind:      models.ActAutomationApplied,
			SprintID:  sprint.ID,
			Meta: activity.Meta{
				"ruleId":     rule.ID,
				"ruleName":   rule.Name,
				"trigger":    models.TriggerSprintClosed,
				"sprintName": sprint.Name,
			}.Encode(),
		})
	}
	return applied, nil
}

func moveOpenIssuesToBacklog(gdb *gorm.DB, sprint *models.Sprint) error {
	var open []models.Issue
	err := gdb.Where("sprint_id = ? AND status_key != ?", sprint.ID, models.StatusDone).
		Find(&open).Error
	if err != nil {
		return fmt.Errorf("automation: load open sprint issues: %w", err)
	}

	byBoard := make(map[string][]string)
	for _, iss := range open {
		byBoard[iss.BoardID] = append(byBoard[iss.BoardID], iss.ID)
	}

	for boardID, ids := range byBoard {
		col, err := board.FirstColumn(gdb, boardID)
		if err != nil {
			// A board with no columns cannot receive the issues; skip it
			// rather than failing the close.
			log.Printf("automation: sprint %s: %v", sprint.ID, err)
			continue
		}
		err = gdb.Model(&models.Issue{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"sprint_id":  nil,
				"column_id":  col.ID,
				"status_key": col.StatusKey,
			}).Error
		if err != nil {
			return fmt.Errorf("automation: move open issues on board %s: %w", boardID, err)
		}
	}
	return nil
}

func triggerMatches(rule *models.AutomationRule, trigger Trigger) bool {
	if rule.TriggerToStatusKey != "" && !strings.EqualFold(rule.TriggerToStatusKey, trigger.ToStatusKey) {
		return false
	}
	if rule.TriggerLinkType != "" && !strings.EqualFold(rule.TriggerLinkType, trigger.LinkType) {
		return false
	}
	return true
}

// conditionsMatch evaluates the rule's optional conditions against the
// subject issue. An unset condition is "don't care".
func conditionsMatch(gdb *gorm.DB, rule *models.AutomationRule, iss *models.Issue) bool {
	if rule.CondIssueType != "" && !strings.EqualFold(rule.CondIssueType, iss.Type) {
		return false
	}
	if rule.CondHasLabel != "" && !models.HasString(iss.Labels, rule.CondHasLabel) {
		return false
	}
	if rule.CondNotHasLabel != "" && models.HasString(iss.Labels, rule.CondNotHasLabel) {
		return false
	}
	if rule.CondIsBlocked != nil {
		if isBlocked(gdb, iss.ID) != *rule.CondIsBlocked {
			return false
		}
	}
	return true
}

// isBlocked reports whether the issue holds at least one blocked_by link.
func isBlocked(gdb *gorm.DB, issueID string) bool {
	var count int64
	if err := gdb.Model(&models.IssueLink{}).
		Where("issue_id = ? AND type = ?", issueID, models.LinkBlockedBy).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func applyLabelActions(labels, add, remove []string) []string {
	set := make(map[string]bool, len(labels))
	var out []string
	for _, l := range labels {
		if !set[l] {
			set[l] = true
			out = append(out, l)
		}
	}
	for _, l := range add {
		if !set[l] {
			set[l] = true
			out = append(out, l)
		}
	}
	if len(remove) > 0 {
		rm := make(map[string]bool, len(remove))
		for _, l := range remove {
			rm[l] = true
		}
		filtered := out[:0]
		for _, l := range out {
			if !rm[l] {
				filtered = append(filtered, l)
			}
		}
		out = filtered
	}
	return out
}
