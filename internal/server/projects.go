package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/project"
	"gorm.io/gorm"
)

type memberPayload struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (p memberPayload) info() project.MemberInfo {
	return project.MemberInfo{UserID: p.UserID, Email: p.Email, DisplayName: p.DisplayName}
}

func handleProjectCreate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Name    string          `json:"name"`
			Key     string          `json:"key"`
			Type    string          `json:"type"`
			Owner   *memberPayload  `json:"owner"`
			Members []memberPayload `json:"members"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		opts := project.CreateOpts{Name: req.Name, Key: req.Key, Type: req.Type}
		if req.Owner != nil {
			opts.Owner = req.Owner.info()
		} else {
			opts.Owner = project.MemberInfo{UserID: actorID}
		}
		for _, m := range req.Members {
			opts.Members = append(opts.Members, m.info())
		}

		proj, defaultBoardID, err := project.Create(gdb, opts)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"project": proj, "defaultBoardId": defaultBoardID})
	}
}

func handleProjectList(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		projects, err := project.List(gdb, actorID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

func handleProjectGet(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		proj, err := project.Get(gdb, c.Param("id"), actorID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": proj})
	}
}

func handleProjectDelete(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		projectID := c.Param("id")
		if err := project.RequireOwner(gdb, projectID, actorID); err != nil {
			fail(c, err)
			return
		}
		counts, err := project.CascadeDelete(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": counts})
	}
}

func handleMemberList(gdb *gorm.DB) gin.HandlerFunc {
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
		members, err := project.Members(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	}
}

func handleMemberAdd(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req memberPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		if err := project.AddMember(gdb, c.Param("id"), actorID, req.info()); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleMemberRemove(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		if err := project.RemoveMember(gdb, c.Param("id"), actorID, c.Param("userId")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleComponentList(gdb *gorm.DB) gin.HandlerFunc {
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
		components, err := project.Components(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"components": components})
	}
}

func handleComponentAdd(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}
		comp, err := project.AddComponent(gdb, c.Param("id"), actorID, req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"component": comp})
	}
}

func handleBoardList(gdb *gorm.DB) gin.HandlerFunc {
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
		boards, err := board.ListForProject(gdb, projectID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"boards": boards})
	}
}

func handleBoardGet(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		b, err := board.Get(gdb, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if err := project.RequireMember(gdb, b.ProjectID, actorID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"board": b})
	}
}

func handleWIPLimitSet(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Limit *int `json:"limit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Wrap(apperr.KindInvalidPayload, err, "invalid request body"))
			return
		}

		col, err := board.GetColumn(gdb, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		b, err := board.Get(gdb, col.BoardID)
		if err != nil {
			fail(c, err)
			return
		}
		if err := project.RequireOwner(gdb, b.ProjectID, actorID); err != nil {
			fail(c, err)
			return
		}
		if err := board.SetWIPLimit(gdb, col.ID, req.Limit); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
