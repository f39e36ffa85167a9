package project

import (
	"fmt"
	"strings"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// AddComponent registers a component name. Names are unique per project,
// case-insensitively.
func AddComponent(gdb *gorm.DB, projectID, actorID, name string) (*models.Component, error) {
	if err := RequireMember(gdb, projectID, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidPayload, "component name is required").WithField("name", "required")
	}

	id, err := db.NewID("cmp")
	if err != nil {
		return nil, err
	}
	comp := models.Component{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		NameLower: strings.ToLower(name),
	}
	if err := gdb.Create(&comp).Error; err != nil {
		if db.IsDuplicate(err) {
			return nil, apperr.New(apperr.KindInvalidComponents, "component %q already exists", name)
		}
		return nil, fmt.Errorf("project: add component %q: %w", name, err)
	}
	return &comp, nil
}

// Components returns the project's registered components.
func Components(gdb *gorm.DB, projectID string) ([]models.Component, error) {
	var comps []models.Component
	if err := gdb.Where("project_id = ?", projectID).Order("name_lower ASC").Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("project: components of %s: %w", projectID, err)
	}
	return comps, nil
}

// ValidateComponents checks that every name exists in the project's
// component registry (case-insensitive).
func ValidateComponents(gdb *gorm.DB, projectID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	var count int64
	if err := gdb.Model(&models.Component{}).
		Where("project_id = ? AND name_lower IN ?", projectID, lowered).
		Count(&count).Error; err != nil {
		return fmt.Errorf("project: validate components: %w", err)
	}
	if count != int64(len(names)) {
		return apperr.New(apperr.KindInvalidComponents, "one or more components are not registered in the project").
			WithField("components", "registered")
	}
	return nil
}
