package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/harborcrm/flowboard/internal/sprint"
	"gorm.io/gorm"
)

func handleSprintCreate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Name           string     `json:"name"`
			Goal           string     `json:"goal"`
			StartDate      *time.Time `json:"startDate"`
			EndDate        *time.Time `json:"endDate"`
			CapacityPoints *int       `json:"capacityPoints"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		s, err := sprint.Create(gdb, c.Param("id"), actorID, sprint.CreateOpts{
			Name:           req.Name,
			Goal:           req.Goal,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			CapacityPoints: req.CapacityPoints,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"sprint": s})
	}
}

func handleSprintList(gdb *gorm.DB) gin.HandlerFunc {
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
		sprints, err := sprint.List(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sprints": sprints})
	}
}

func handleSprintGet(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		s, err := sprint.Get(gdb, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if err := project.RequireMember(gdb, s.ProjectID, actorID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sprint": s})
	}
}

func handleSprintUpdate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Name           *string    `json:"name"`
			Goal           *string    `json:"goal"`
			StartDate      *time.Time `json:"startDate"`
			EndDate        *time.Time `json:"endDate"`
			CapacityPoints *int       `json:"capacityPoints"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		err := sprint.Update(gdb, c.Param("id"), actorID, sprint.UpdateOpts{
			Name:           req.Name,
			Goal:           req.Goal,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			CapacityPoints: req.CapacityPoints,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleSprintActivate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		if err := sprint.SetActive(gdb, c.Param("id"), actorID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleSprintClose(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		force := c.Query("force") == "true"
		if err := sprint.Close(gdb, c.Param("id"), actorID, force); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
