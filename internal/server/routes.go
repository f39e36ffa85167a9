package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up the full API surface on the Gin router.
func registerRoutes(router *gin.Engine, gdb *gorm.DB) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Projects, membership, components.
	api.POST("/projects", handleProjectCreate(gdb))
	api.GET("/projects", handleProjectList(gdb))
	api.GET("/projects/:id", handleProjectGet(gdb))
	api.DELETE("/projects/:id", handleProjectDelete(gdb))
	api.GET("/projects/:id/members", handleMemberList(gdb))
	api.POST("/projects/:id/members", handleMemberAdd(gdb))
	api.DELETE("/projects/:id/members/:userId", handleMemberRemove(gdb))
	api.GET("/projects/:id/components", handleComponentList(gdb))
	api.POST("/projects/:id/components", handleComponentAdd(gdb))

	// Boards and columns.
	api.GET("/projects/:id/boards", handleBoardList(gdb))
	api.GET("/boards/:id", handleBoardGet(gdb))
	api.PUT("/columns/:id/wip", handleWIPLimitSet(gdb))

	// Issues.
	api.POST("/issues", handleIssueCreate(gdb))
	api.POST("/issues/bulk", handleIssueBulk(gdb))
	api.GET("/issues/:id", handleIssueGet(gdb))
	api.PATCH("/issues/:id", handleIssueUpdate(gdb))
	api.POST("/issues/:id/move", handleIssueMove(gdb))
	api.POST("/issues/:id/links", handleLinkAdd(gdb))
	api.DELETE("/issues/:id/links", handleLinkRemove(gdb))
	api.GET("/issues/:id/comments", handleCommentList(gdb))
	api.POST("/issues/:id/comments", handleCommentAdd(gdb))
	api.GET("/projects/:id/issues", handleIssueList(gdb))
	api.GET("/projects/:id/epics", handleEpicRollups(gdb))

	// Sprints.
	api.POST("/projects/:id/sprints", handleSprintCreate(gdb))
	api.GET("/projects/:id/sprints", handleSprintList(gdb))
	api.GET("/sprints/:id", handleSprintGet(gdb))
	api.PATCH("/sprints/:id", handleSprintUpdate(gdb))
	api.POST("/sprints/:id/activate", handleSprintActivate(gdb))
	api.POST("/sprints/:id/close", handleSprintClose(gdb))

	// Automation rules.
	api.POST("/projects/:id/rules", handleRuleCreate(gdb))
	api.GET("/projects/:id/rules", handleRuleList(gdb))
	api.PATCH("/rules/:id", handleRuleUpdate(gdb))
	api.DELETE("/rules/:id", handleRuleDelete(gdb))

	// Time tracking.
	api.POST("/issues/:id/time", handleTimeLog(gdb))
	api.PATCH("/time/:id", handleTimeUpdate(gdb))
	api.DELETE("/time/:id", handleTimeDelete(gdb))
	api.GET("/projects/:id/time", handleTimeRollups(gdb))

	// Watches, notifications, activity.
	api.PUT("/projects/:id/watch", handleProjectWatch(gdb))
	api.PUT("/issues/:id/watch", handleIssueWatch(gdb))
	api.GET("/projects/:id/notifications", handleNotificationList(gdb))
	api.POST("/projects/:id/notifications/read-all", handleNotificationReadAll(gdb))
	api.POST("/notifications/:id/read", handleNotificationRead(gdb))
	api.GET("/projects/:id/activity", handleActivityList(gdb))
}
