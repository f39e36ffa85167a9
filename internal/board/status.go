package board

import (
	"strings"

	"github.com/harborcrm/flowboard/internal/models"
)

// DeriveStatusKey maps a column display name to its lifecycle bucket by
// case-insensitive substring match. Match order matters: "Backlog Review"
// is backlog, not in_review. Unrecognized names default to todo.
func DeriveStatusKey(columnName string) string {
	name := strings.ToLower(columnName)
	switch {
	case strings.Contains(name, "backlog"):
		return models.StatusBacklog
	case strings.Contains(name, "review"):
		return models.StatusInReview
	case strings.Contains(name, "doing"), strings.Contains(name, "progress"):
		return models.StatusInProgress
	case strings.Contains(name, "done"), strings.Contains(name, "complete"):
		return models.StatusDone
	case strings.Contains(name, "to do"), strings.Contains(name, "todo"), strings.Contains(name, "not started"):
		return models.StatusTodo
	default:
		return models.StatusTodo
	}
}
