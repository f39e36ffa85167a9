package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/automation"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

type rulePayload struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`

	TriggerKind        string `json:"triggerKind"`
	TriggerToStatusKey string `json:"triggerToStatusKey"`
	TriggerLinkType    string `json:"triggerLinkType"`

	CondIssueType   string `json:"condIssueType"`
	CondHasLabel    string `json:"condHasLabel"`
	CondNotHasLabel string `json:"condNotHasLabel"`
	CondIsBlocked   *bool  `json:"condIsBlocked"`

	AddLabels         []string `json:"addLabels"`
	RemoveLabels      []string `json:"removeLabels"`
	MoveOpenToBacklog bool     `json:"moveOpenToBacklog"`
}

func (p rulePayload) opts() automation.RuleOpts {
	return automation.RuleOpts{
		Name:               p.Name,
		Enabled:            p.Enabled,
		TriggerKind:        p.TriggerKind,
		TriggerToStatusKey: p.TriggerToStatusKey,
		TriggerLinkType:    p.TriggerLinkType,
		CondIssueType:      p.CondIssueType,
		CondHasLabel:       p.CondHasLabel,
		CondNotHasLabel:    p.CondNotHasLabel,
		CondIsBlocked:      p.CondIsBlocked,
		AddLabels:          p.AddLabels,
		RemoveLabels:       p.RemoveLabels,
		MoveOpenToBacklog:  p.MoveOpenToBacklog,
	}
}

func handleRuleCreate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req rulePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		rule, err := automation.CreateRule(gdb, c.Param("id"), actorID, req.opts())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"rule": rule})
	}
}

func handleRuleList(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		projectID := c.Param("id")
		if err := project.RequireMember(gdb, projectID, actorID); err != nil {
			fail(c, err)
			return
		}
		rules, err := automation.ListRules(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rules": rules})
	}
}

func handleRuleUpdate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req rulePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		if err := automation.UpdateRule(gdb, c.Param("id"), actorID, req.opts()); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleRuleDelete(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		if err := automation.DeleteRule(gdb, c.Param("id"), actorID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
