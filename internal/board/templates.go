// Package board provisions boards and columns from project-type templates
// and owns column-level rules: WIP limits and status-key derivation.
package board

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// BoardTemplate describes one board to create for a project type.
type BoardTemplate struct {
	Name    string
	Kind    string
	Columns []string
}

// columnSpacing leaves room between column positions for future manual
// reordering.
const columnSpacing = 1000

// TemplatesFor returns the board templates for a project type. Unknown
// types fall back to the kanban template.
func TemplatesFor(projectType string) []BoardTemplate {
	switch projectType {
	case models.ProjectScrum:
		return []BoardTemplate{
			{Name: "Backlog", Kind: models.BoardBacklog, Columns: []string{"Backlog"}},
			{Name: "Sprint Board", Kind: models.BoardKanban, Columns: []string{"To Do", "In Progress", "In Review", "Done"}},
		}
	case models.ProjectTraditional:
		return []BoardTemplate{
			{Name: "Milestones", Kind: models.BoardMilestones, Columns: []string{"Not Started", "In Progress", "Blocked", "Complete"}},
		}
	case models.ProjectHybrid:
		return []BoardTemplate{
			{Name: "Board", Kind: models.BoardKanban, Columns: []string{"To Do", "In Progress", "In Review", "Done"}},
			{Name: "Backlog", Kind: models.BoardBacklog, Columns: []string{"Backlog"}},
		}
	default: // kanban
		return []BoardTemplate{
			{Name: "Board", Kind: models.BoardKanban, Columns: []string{"To Do", "In Progress", "In Review", "Done"}},
		}
	}
}

// CreateForProject provisions the template boards and columns for a new
// project and returns the default board ID: the first kanban-kind board,
// else the first board created.
func CreateForProject(gdb *gorm.DB, projectID, projectType string) (string, error) {
	templates := TemplatesFor(projectType)

	firstID := ""
	firstKanbanID := ""
	for _, tpl := range templates {
		boardID, err := db.NewID("bd")
		if err != nil {
			return "", err
		}
		b := models.Board{
			ID:        boardID,
			ProjectID: projectID,
			Name:      tpl.Name,
			Kind:      tpl.Kind,
		}
		if err := gdb.Create(&b).Error; err != nil {
			return "", fmt.Errorf("board: create %q: %w", tpl.Name, err)
		}

		for i, name := range tpl.Columns {
			colID, err := db.NewID("col")
			if err != nil {
				return "", err
			}
			col := models.Column{
				ID:        colID,
				BoardID:   boardID,
				Name:      name,
				Position:  (i + 1) * columnSpacing,
				StatusKey: DeriveStatusKey(name),
			}
			if err := gdb.Create(&col).Error; err != nil {
				return "", fmt.Errorf("board: create column %q: %w", name, err)
			}
		}

		if firstID == "" {
			firstID = boardID
		}
		if firstKanbanID == "" && tpl.Kind == models.BoardKanban {
			firstKanbanID = boardID
		}
	}

	if firstKanbanID != "" {
		return firstKanbanID, nil
	}
	return firstID, nil
}
