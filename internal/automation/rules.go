// Package automation stores trigger/condition/action rules and evaluates
// them against domain events.
package automation

import (
	"errors"
	"fmt"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

// RuleOpts holds the editable fields of an automation rule.
type RuleOpts struct {
	Name    string
	Enabled bool

	TriggerKind        string
	TriggerToStatusKey string
	TriggerLinkType    string

	CondIssueType   string
	CondHasLabel    string
	CondNotHasLabel string
	CondIsBlocked   *bool

	AddLabels         []string
	RemoveLabels      []string
	MoveOpenToBacklog bool
}

func validTriggerKind(kind string) bool {
	switch kind {
	case models.TriggerIssueMoved, models.TriggerIssueLinkAdded,
		models.TriggerIssueLinkRemoved, models.TriggerSprintClosed:
		return true
	}
	return false
}

// CreateRule creates an automation rule. Owner-only.
func CreateRule(gdb *gorm.DB, projectID, actorID string, opts RuleOpts) (*models.AutomationRule, error) {
	if err := project.RequireOwner(gdb, projectID, actorID); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		return nil, apperr.New(apperr.KindInvalidPayload, "rule name is required").WithField("name", "required")
	}
	if !validTriggerKind(opts.TriggerKind) {
		return nil, apperr.New(apperr.KindInvalidPayload, "unknown trigger kind %q", opts.TriggerKind).WithField("trigger.kind", "enum")
	}

	id, err := db.NewID("rul")
	if err != nil {
		return nil, err
	}
	rule := models.AutomationRule{
		ID:                      id,
		ProjectID:               projectID,
		Name:                    opts.Name,
		Enabled:                 opts.Enabled,
		TriggerKind:             opts.TriggerKind,
		TriggerToStatusKey:      opts.TriggerToStatusKey,
		TriggerLinkType:         opts.TriggerLinkType,
		CondIssueType:           opts.CondIssueType,
		CondHasLabel:            opts.CondHasLabel,
		CondNotHasLabel:         opts.CondNotHasLabel,
		CondIsBlocked:           opts.CondIsBlocked,
		ActionAddLabels:         models.EncodeStrings(opts.AddLabels),
		ActionRemoveLabels:      models.EncodeStrings(opts.RemoveLabels),
		ActionMoveOpenToBacklog: opts.MoveOpenToBacklog,
	}
	if err := gdb.Create(&rule).Error; err != nil {
		return nil, fmt.Errorf("automation: create rule: %w", err)
	}
	return &rule, nil
}

// UpdateRule replaces a rule's editable fields. Owner-only.
func UpdateRule(gdb *gorm.DB, ruleID, actorID string, opts RuleOpts) error {
	rule, err := getRule(gdb, ruleID)
	if err != nil {
		return err
	}
	if err := project.RequireOwner(gdb, rule.ProjectID, actorID); err != nil {
		return err
	}
	if !validTriggerKind(opts.TriggerKind) {
		return apperr.New(apperr.KindInvalidPayload, "unknown trigger kind %q", opts.TriggerKind).WithField("trigger.kind", "enum")
	}

	updates := map[string]interface{}{
		"name":                 opts.Name,
		"enabled":              opts.Enabled,
		"trigger_kind":         opts.TriggerKind,
		"trigger_to_status_key": opts.TriggerToStatusKey,
		"trigger_link_type":    opts.TriggerLinkType,
		"cond_issue_type":      opts.CondIssueType,
		"cond_has_label":       opts.CondHasLabel,
		"cond_not_has_label":   opts.CondNotHasLabel,
		"cond_is_blocked":      opts.CondIsBlocked,
		"action_add_labels":    models.EncodeStrings(opts.AddLabels),
		"action_remove_labels": models.EncodeStrings(opts.RemoveLabels),
		"action_move_open_to_backlog": opts.MoveOpenToBacklog,
	}
	if err := gdb.Model(&models.AutomationRule{}).Where("id = ?", ruleID).Updates(updates).Error; err != nil {
		return fmt.Errorf("automation: update rule %s: %w", ruleID, err)
	}
	return nil
}

// DeleteRule removes a rule. Owner-only.
func DeleteRule(gdb *gorm.DB, ruleID, actorID string) error {
	rule, err := getRule(gdb, ruleID)
	if err != nil {
		return err
	}
	if err := project.RequireOwner(gdb, rule.ProjectID, actorID); err != nil {
		return err
	}
	if err := gdb.Where("id = ?", ruleID).Delete(&models.AutomationRule{}).Error; err != nil {
		return fmt.Errorf("automation: delete rule %s: %w", ruleID, err)
	}
	return nil
}

// ListRules returns a project's rules in creation order.
func ListRules(gdb *gorm.DB, projectID string) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	if err := gdb.Where("project_id = ?", projectID).Order("created_at ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("automation: list rules for %s: %w", projectID, err)
	}
	return rules, nil
}

func getRule(gdb *gorm.DB, ruleID string) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	if err := gdb.Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "rule not found: %s", ruleID)
		}
		return nil, fmt.Errorf("automation: get rule %s: %w", ruleID, err)
	}
	return &rule, nil
}
