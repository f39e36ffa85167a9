package project

import (
	"testing"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func createTestProject(t *testing.T, gdb *gorm.DB, key, projType string) (*models.Project, string) {
	t.Helper()
	proj, boardID, err := Create(gdb, CreateOpts{
		Name: "Test " + key,
		Key:  key,
		Type: projType,
		Owner: MemberInfo{
			UserID:      "u-owner",
			Email:       "owner@example.com",
			DisplayName: "Olive Owner",
		},
		Members: []MemberInfo{
			{UserID: "u-member", Email: "member@example.com", DisplayName: "Mia Member"},
		},
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	return proj, boardID
}

func TestCreate_ProvisionsBoardsAndMembers(t *testing.T) {
	gdb := testDB(t)

	proj, boardID, err := Create(gdb, CreateOpts{
		Name:  "Customer Portal",
		Key:   "crm",
		Type:  models.ProjectScrum,
		Owner: MemberInfo{UserID: "u-owner"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if proj.Key != "CRM" {
		t.Errorf("key = %q, want normalized CRM", proj.Key)
	}
	if boardID == "" {
		t.Fatal("no default board returned")
	}

	var boards int64
	gdb.Model(&models.Board{}).Where("project_id = ?", proj.ID).Count(&boards)
	if boards != 2 {
		t.Errorf("scrum boards = %d, want 2", boards)
	}

	members, err := Members(gdb, proj.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 || members[0].Role != models.RoleOwner {
		t.Errorf("members = %+v, want a single owner row", members)
	}

	var created int64
	gdb.Model(&models.Activity{}).
		Where("project_id = ? AND kind = ?", proj.ID, models.ActProjectCreated).Count(&created)
	if created != 1 {
		t.Errorf("project_created events = %d, want 1", created)
	}
}

func TestCreate_KeyValidation(t *testing.T) {
	gdb := testDB(t)

	for _, key := range []string{"", "C", "1CRM", "TOO-LONG!!", "ABCDEFGHIJK"} {
		_, _, err := Create(gdb, CreateOpts{Name: "X", Key: key, Owner: MemberInfo{UserID: "u-1"}})
		if !apperr.IsKind(err, apperr.KindInvalidKey) {
			t.Errorf("Create(key=%q) = %v, want invalid_key", key, err)
		}
	}
}

func TestCreate_DuplicateKey(t *testing.T) {
	gdb := testDB(t)
	createTestProject(t, gdb, "CRM", models.ProjectKanban)

	_, _, err := Create(gdb, CreateOpts{Name: "Other", Key: "CRM", Owner: MemberInfo{UserID: "u-2"}})
	if !apperr.IsKind(err, apperr.KindKeyTaken) {
		t.Errorf("Create duplicate = %v, want key_taken", err)
	}

	// The failed transaction must leave no orphan boards behind.
	var boards int64
	gdb.Model(&models.Board{}).Count(&boards)
	if boards != 1 {
		t.Errorf("boards after rollback = %d, want 1", boards)
	}
}

func TestCreate_UnknownType(t *testing.T) {
	gdb := testDB(t)
	_, _, err := Create(gdb, CreateOpts{Name: "X", Key: "AA", Type: "waterfall", Owner: MemberInfo{UserID: "u-1"}})
	if !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Errorf("Create(type=waterfall) = %v, want invalid_payload", err)
	}
}

func TestGet_ScopedToMembers(t *testing.T) {
	gdb := testDB(t)
	proj, _ := createTestProject(t, gdb, "CRM", models.ProjectKanban)

	if _, err := Get(gdb, proj.ID, "u-member"); err != nil {
		t.Errorf("Get as member = %v, want nil", err)
	}

	// Non-members see not_found, not forbidden, so existence never leaks.
	_, err := Get(gdb, proj.ID, "u-stranger")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("Get as stranger = %v, want not_found", err)
	}
}

func TestList_OnlyMemberProjects(t *testing.T) {
	gdb := testDB(t)
	createTestProject(t, gdb, "AAA", models.ProjectKanban)

	_, _, err := Create(gdb, CreateOpts{Name: "Private", Key: "BBB", Owner: MemberInfo{UserID: "u-else"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	projects, err := List(gdb, "u-member")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 || projects[0].Key != "AAA" {
		t.Errorf("List = %v, want only AAA", projects)
	}
}

func TestAddMember_OwnerOnly(t *testing.T) {
	gdb := testDB(t)
	proj, _ := createTestProject(t, gdb, "CRM", models.ProjectKanban)

	err := AddMember(gdb, proj.ID, "u-member", MemberInfo{UserID: "u-new"})
	if !apperr.IsKind(err, apperr.KindOwnerOnly) {
		t.Errorf("AddMember as member = %v, want owner_only", err)
	}

	if err := AddMember(gdb, proj.ID, "u-owner", MemberInfo{UserID: "u-new"}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// Re-adding is a no-op, not an error.
	if err := AddMember(gdb, proj.ID, "u-owner", MemberInfo{UserID: "u-new"}); err != nil {
		t.Errorf("AddMember duplicate = %v, want nil", err)
	}
	members, _ := Members(gdb, proj.ID)
	if len(members) != 3 {
		t.Errorf("members = %d, want 3", len(members))
	}
}

func TestRemoveMember_OwnerProtected(t *testing.T) {
	gdb := testDB(t)
	proj, _ := createTestProject(t, gdb, "CRM", models.ProjectKanban)

	err := RemoveMember(gdb, proj.ID, "u-owner", "u-owner")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("RemoveMember(owner) = %v, want forbidden", err)
	}

	if err := RemoveMember(gdb, proj.ID, "u-owner", "u-member"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	err = RemoveMember(gdb, proj.ID, "u-owner", "u-member")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("RemoveMember twice = %v, want not_found", err)
	}
}

func TestComponents_CaseInsensitiveRegistry(t *testing.T) {
	gdb := testDB(t)
	proj, _ := createTestProject(t, gdb, "CRM", models.ProjectKanban)

	if _, err := AddComponent(gdb, proj.ID, "u-member", "Billing"); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	_, err := AddComponent(gdb, proj.ID, "u-member", "BILLING")
	if !apperr.IsKind(err, apperr.KindInvalidComponents) {
		t.Errorf("AddComponent case-duplicate = %v, want invalid_components", err)
	}

	if err := ValidateComponents(gdb, proj.ID, []string{"billing"}); err != nil {
		t.Errorf("ValidateComponents(billing) = %v, want nil", err)
	}
	err = ValidateComponents(gdb, proj.ID, []string{"billing", "search"})
	if !apperr.IsKind(err, apperr.KindInvalidComponents) {
		t.Errorf("ValidateComponents(unregistered) = %v, want invalid_components", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	gdb := testDB(t)
	proj, boardID := createTestProject(t, gdb, "CRM", models.ProjectKanban)

	// Populate one row in each dependent collection.
	var col models.Column
	if err := gdb.Where("board_id = ?", boardID).Order("position ASC").First(&col).Error; err != nil {
		t.Fatalf("first column: %v", err)
	}
	seed := []interface{}{
		&models.Sprint{ID: "sp-1", ProjectID: proj.ID, Name: "S1", State: models.SprintPlanned},
		&models.Issue{ID: "iss-1", ProjectID: proj.ID, BoardID: boardID, ColumnID: col.ID,
			Title: "t", StatusKey: col.StatusKey, Position: 1000, ReporterID: "u-owner",
			Labels: "[]", Components: "[]"},
		&models.IssueLink{IssueID: "iss-1", Type: models.LinkRelatesTo, OtherIssueID: "iss-1x"},
		&models.Comment{ID: "cm-1", IssueID: "iss-1", ProjectID: proj.ID, AuthorID: "u-owner", Body: "b"},
		&models.Watch{ProjectID: proj.ID, UserID: "u-member"},
		&models.Notification{ID: "ntf-1", ProjectID: proj.ID, UserID: "u-member", Kind: "x", Title: "t"},
		&models.AutomationRule{ID: "rule-1", ProjectID: proj.ID, Name: "r", TriggerKind: models.TriggerIssueMoved,
			ActionAddLabels: "[]", ActionRemoveLabels: "[]"},
		&models.TimeEntry{ID: "te-1", ProjectID: proj.ID, IssueID: "iss-1", UserID: "u-owner", Minutes: 30},
		&models.Component{ID: "cmp-1", ProjectID: proj.ID, Name: "API", NameLower: "api"},
	}
	for _, row := range seed {
		if err := gdb.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	if _, err := CascadeDelete(gdb, proj.ID); err != nil {
		t.Fatalf("CascadeDelete: %v", err)
	}

	checks := map[string]interface{}{
		"projects":         &models.Project{},
		"members":          &models.Member{},
		"boards":           &models.Board{},
		"columns":          &models.Column{},
		"sprints":          &models.Sprint{},
		"issues":           &models.Issue{},
		"issue_links":      &models.IssueLink{},
		"comments":         &models.Comment{},
		"watches":          &models.Watch{},
		"notifications":    &models.Notification{},
		"automation_rules": &models.AutomationRule{},
		"time_entries":     &models.TimeEntry{},
		"components":       &models.Component{},
	}
	for name, model := range checks {
		var count int64
		if err := gdb.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("%s not fully deleted: %d rows remain", name, count)
		}
	}

	// The project is gone, so a repeat delete reports not_found.
	_, err := CascadeDelete(gdb, proj.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second CascadeDelete = %v, want not_found", err)
	}
}
