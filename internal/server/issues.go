package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/issue"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

func handleIssueCreate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			BoardID            string   `json:"boardId"`
			ColumnID           string   `json:"columnId"`
			Title              string   `json:"title"`
			Description        string   `json:"description"`
			Type               string   `json:"type"`
			Priority           string   `json:"priority"`
			AcceptanceCriteria string   `json:"acceptanceCriteria"`
			StoryPoints        *int     `json:"storyPoints"`
			SprintID           string   `json:"sprintId"`
			EpicID             string   `json:"epicId"`
			Labels             []string `json:"labels"`
			Components         []string `json:"components"`
			AssigneeID         string   `json:"assigneeId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		iss, err := issue.Create(gdb, actorID, issue.CreateOpts{
			BoardID:            req.BoardID,
			ColumnID:           req.ColumnID,
			Title:              req.Title,
			Description:        req.Description,
			Type:               req.Type,
			Priority:           req.Priority,
			AcceptanceCriteria: req.AcceptanceCriteria,
			StoryPoints:        req.StoryPoints,
			SprintID:           req.SprintID,
			EpicID:             req.EpicID,
			Labels:             req.Labels,
			Components:         req.Components,
			AssigneeID:         req.AssigneeID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"issue": iss})
	}
}

func handleIssueGet(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		iss, err := issue.Get(gdb, c.Param("id"), actorID)
		if err != nil {
			fail(c, err)
			return
		}
		blocked, err := issue.IsBlocked(gdb, iss.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"issue": iss, "blocked": blocked})
	}
}

func handleIssueList(gdb *gorm.DB) gin.HandlerFunc {
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
		issues, err := issue.List(gdb, projectID, issue.ListFilters{
			BoardID:    c.Query("boardId"),
			ColumnID:   c.Query("columnId"),
			SprintID:   c.Query("sprintId"),
			EpicID:     c.Query("epicId"),
			Type:       c.Query("type"),
			StatusKey:  c.Query("statusKey"),
			AssigneeID: c.Query("assigneeId"),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"issues": issues})
	}
}

func handleIssueUpdate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Title              *string   `json:"title"`
			Description        *string   `json:"description"`
			Type               *string   `json:"type"`
			Priority           *string   `json:"priority"`
			AcceptanceCriteria *string   `json:"acceptanceCriteria"`
			StoryPoints        *int      `json:"storyPoints"`
			ClearStoryPoints   bool      `json:"clearStoryPoints"`
			AssigneeID         *string   `json:"assigneeId"`
			SprintID           *string   `json:"sprintId"`
			EpicID             *string   `json:"epicId"`
			Labels             *[]string `json:"labels"`
			Components         *[]string `json:"components"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		err := issue.Update(gdb, actorID, c.Param("id"), issue.Patch{
			Title:              req.Title,
			Description:        req.Description,
			Type:               req.Type,
			Priority:           req.Priority,
			AcceptanceCriteria: req.AcceptanceCriteria,
			StoryPoints:        req.StoryPoints,
			ClearStoryPoints:   req.ClearStoryPoints,
			AssigneeID:         req.AssigneeID,
			SprintID:           req.SprintID,
			EpicID:             req.EpicID,
			Labels:             req.Labels,
			Components:         req.Components,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleIssueMove(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			ColumnID string `json:"columnId"`
			Index    int    `json:"index"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		if err := issue.Move(gdb, actorID, c.Param("id"), req.ColumnID, req.Index); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleIssueBulk(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			IssueIDs         []string `json:"issueIds"`
			SetAssignee      string   `json:"setAssignee"`
			ClearAssignee    bool     `json:"clearAssignee"`
			SetSprint        string   `json:"setSprint"`
			ClearSprint      bool     `json:"clearSprint"`
			AddLabels        []string `json:"addLabels"`
			RemoveLabels     []string `json:"removeLabels"`
			AddComponents    []string `json:"addComponents"`
			RemoveComponents []string `json:"removeComponents"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		result, err := issue.BulkUpdate(gdb, actorID, req.IssueIDs, issue.BulkPatch{
			SetAssignee:      req.SetAssignee,
			ClearAssignee:    req.ClearAssignee,
			SetSprint:        req.SetSprint,
			ClearSprint:      req.ClearSprint,
			AddLabels:        req.AddLabels,
			RemoveLabels:     req.RemoveLabels,
			AddComponents:    req.AddComponents,
			RemoveComponents: req.RemoveComponents,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"matched": result.Matched, "modified": result.Modified})
	}
}

func handleLinkAdd(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Type         string `json:"type"`
			OtherIssueID string `json:"otherIssueId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		if err := issue.AddLink(gdb, actorID, c.Param("id"), req.Type, req.OtherIssueID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleLinkRemove(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		linkType := c.Query("type")
		otherID := c.Query("otherIssueId")
		if linkType == "" || otherID == "" {
			fail(c, apperr.New(apperr.KindInvalidPayload, "type and otherIssueId query params are required"))
			return
		}
		if err := issue.RemoveLink(gdb, actorID, c.Param("id"), linkType, otherID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleCommentAdd(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		comment, err := issue.AddComment(gdb, actorID, c.Param("id"), req.Body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}

func handleCommentList(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		iss, err := issue.Get(gdb, c.Param("id"), actorID)
		if err != nil {
			fail(c, err)
			return
		}
		comments, err := issue.Comments(gdb, iss.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	}
}

func handleEpicRollups(gdb *gorm.DB) gin.HandlerFunc {
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
		rollups, err := issue.EpicRollups(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"epics": rollups})
	}
}
