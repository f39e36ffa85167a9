package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/issue"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/harborcrm/flowboard/internal/timeentry"
	"gorm.io/gorm"
)

func handleProjectWatch(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		projectID := c.Param("id")
		if err := project.RequireMember(gdb, projectID, actorID); err != nil {
			fail(c, err)
			return
		}
		if err := notify.SetWatch(gdb, projectID, actorID, "", req.Enabled); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleIssueWatch(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		iss, err := issue.Get(gdb, c.Param("id"), actorID)
		if err != nil {
			fail(c, err)
			return
		}
		if err := notify.SetWatch(gdb, iss.ProjectID, actorID, iss.ID, req.Enabled); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleNotificationList(gdb *gorm.DB) gin.HandlerFunc {
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
		unreadOnly := c.Query("unread") == "true"
		notifications, err := notify.List(gdb, projectID, actorID, unreadOnly)
		if err != nil {
			fail(c, err)
			return
		}
		unread, err := notify.UnreadCount(gdb, projectID, actorID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
	}
}

func handleNotificationRead(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		if err := notify.MarkRead(gdb, c.Param("id"), actorID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleNotificationReadAll(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		marked, err := notify.MarkAllRead(gdb, c.Param("id"), actorID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"marked": marked})
	}
}

func handleActivityList(gdb *gorm.DB) gin.HandlerFunc {
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

		filters := activity.ListFilters{
			Kind:    c.Query("kind"),
			IssueID: c.Query("issueId"),
			ActorID: c.Query("actorId"),
		}
		if since := c.Query("since"); since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				fail(c, apperr.New(apperr.KindInvalidPayload, "since must be RFC 3339").WithField("since", "rfc3339"))
				return
			}
			filters.Since = &t
		}
		if limit := c.Query("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 1 {
				fail(c, apperr.New(apperr.KindInvalidPayload, "limit must be a positive integer").WithField("limit", "positive_int"))
				return
			}
			filters.Limit = n
		}

		events, err := activity.List(gdb, projectID, filters)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

func handleTimeLog(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Minutes  int        `json:"minutes"`
			Billable bool       `json:"billable"`
			Note     string     `json:"note"`
			WorkDate *time.Time `json:"workDate"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		opts := timeentry.LogOpts{Minutes: req.Minutes, Billable: req.Billable, Note: req.Note}
		if req.WorkDate != nil {
			opts.WorkDate = *req.WorkDate
		}
		entry, err := timeentry.Log(gdb, actorID, c.Param("id"), opts)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"entry": entry})
	}
}

func handleTimeUpdate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Minutes  *int       `json:"minutes"`
			Billable *bool      `json:"billable"`
			Note     *string    `json:"note"`
			WorkDate *time.Time `json:"workDate"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		err := timeentry.Update(gdb, actorID, c.Param("id"), timeentry.UpdateOpts{
			Minutes:  req.Minutes,
			Billable: req.Billable,
			Note:     req.Note,
			WorkDate: req.WorkDate,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTimeDelete(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		if err := timeentry.Delete(gdb, actorID, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTimeRollups(gdb *gorm.DB) gin.HandlerFunc {
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

		filters := timeentry.RollupFilters{
			UserID:  c.Query("userId"),
			IssueID: c.Query("issueId"),
		}
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				fail(c, apperr.New(apperr.KindInvalidPayload, "from must be YYYY-MM-DD").WithField("from", "date"))
				return
			}
			filters.From = &t
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				fail(c, apperr.New(apperr.KindInvalidPayload, "to must be YYYY-MM-DD").WithField("to", "date"))
				return
			}
			filters.To = &t
		}

		rollups, err := timeentry.Rollups(gdb, projectID, filters)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rollups": rollups})
	}
}
