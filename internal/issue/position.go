package issue

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/ordering"
	"gorm.io/gorm"
)

// columnIssues returns the IDs and positions of a column's issues sorted
// ascending, excluding excludeID (the issue being moved, if any).
func columnIssues(gdb *gorm.DB, columnID, excludeID string) (ids []string, keys []float64, err error) {
	q := gdb.Model(&models.Issue{}).Where("column_id = ?", columnID)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	var rows []models.Issue
	if err := q.Select("id, position").Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("issue: column %s positions: %w", columnID, err)
	}
	ids = make([]string, len(rows))
	keys = make([]float64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		keys[i] = r.Position
	}
	return ids, keys, nil
}

// positionAt computes the key for inserting at index into the column,
// rebalancing the column first when the neighboring gap has collapsed.
// Only the affected column is ever renumbered.
func positionAt(gdb *gorm.DB, columnID, excludeID string, index int) (float64, error) {
	ids, keys, err := columnIssues(gdb, columnID, excludeID)
	if err != nil {
		return 0, err
	}

	key, ok := ordering.KeyAt(keys, index)
	if ok {
		return key, nil
	}

	fresh := ordering.Rebalanced(len(ids))
	err = gdb.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&models.Issue{}).Where("id = ?", id).
				Update("position", fresh[i]).Error; err != nil {
				return fmt.Errorf("issue: rebalance column %s: %w", columnID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	key, ok = ordering.KeyAt(fresh, index)
	if !ok {
		// Unreachable: rebalanced keys are Spacing apart.
		return 0, fmt.Errorf("issue: rebalance of column %s left no gap at index %d", columnID, index)
	}
	return key, nil
}

// appendPosition computes the key for appending at the end of the column.
func appendPosition(gdb *gorm.DB, columnID string) (float64, error) {
	_, keys, err := columnIssues(gdb, columnID, "")
	if err != nil {
		return 0, err
	}
	key, _ := ordering.KeyAt(keys, len(keys))
	return key, nil
}
