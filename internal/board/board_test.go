package board

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

func TestTemplatesFor_Scrum(t *testing.T) {
	templates := TemplatesFor(models.ProjectScrum)
	if len(templates) != 2 {
		t.Fatalf("len = %d, want 2", len(templates))
	}
	if templates[0].Kind != models.BoardBacklog {
		t.Errorf("first template kind = %q, want backlog", templates[0].Kind)
	}
	if templates[1].Kind != models.BoardKanban {
		t.Errorf("second template kind = %q, want kanban", templates[1].Kind)
	}
}

func TestTemplatesFor_UnknownFallsBackToKanban(t *testing.T) {
	templates := TemplatesFor("whatever")
	if len(templates) != 1 || templates[0].Kind != models.BoardKanban {
		t.Fatalf("unknown type templates = %+v, want single kanban board", templates)
	}
}

func TestCreateForProject_ScrumDefaultsToKanbanBoard(t *testing.T) {
	gdb := testDB(t)

	// Scrum lists the backlog board first; the default must still be the
	// kanban-kind sprint board.
	defaultID, err := CreateForProject(gdb, "proj-1", models.ProjectScrum)
	if err != nil {
		t.Fatalf("CreateForProject: %v", err)
	}

	b, err := Get(gdb, defaultID)
	if err != nil {
		t.Fatalf("Get default board: %v", err)
	}
	if b.Kind != models.BoardKanban {
		t.Errorf("default board kind = %q, want kanban", b.Kind)
	}
	if len(b.Columns) != 4 {
		t.Fatalf("default board columns = %d, want 4", len(b.Columns))
	}
	for i, col := range b.Columns {
		if want := (i + 1) * columnSpacing; col.Position != want {
			t.Errorf("column %d position = %d, want %d", i, col.Position, want)
		}
	}
	if b.Columns[3].StatusKey != models.StatusDone {
		t.Errorf("last column status = %q, want done", b.Columns[3].StatusKey)
	}
}

func TestCreateForProject_TraditionalDefaultsToFirstBoard(t *testing.T) {
	gdb := testDB(t)

	defaultID, err := CreateForProject(gdb, "proj-2", models.ProjectTraditional)
	if err != nil {
		t.Fatalf("CreateForProject: %v", err)
	}
	b, err := Get(gdb, defaultID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Kind != models.BoardMilestones {
		t.Errorf("default board kind = %q, want milestones", b.Kind)
	}
}

func TestWIPLimitRoundTrip(t *testing.T) {
	gdb := testDB(t)

	// The raw update in SetWIPLimit and the migrated schema must agree on
	// the column name; WIPLimit's naming is pinned by its tag.
	if !gdb.Migrator().HasColumn(&models.Column{}, "wip_limit") {
		t.Fatal("columns table has no wip_limit column")
	}

	boardID, err := CreateForProject(gdb, "proj-wip", models.ProjectKanban)
	if err != nil {
		t.Fatalf("CreateForProject: %v", err)
	}
	col, err := FirstColumn(gdb, boardID)
	if err != nil {
		t.Fatalf("FirstColumn: %v", err)
	}

	limit := 3
	if err := SetWIPLimit(gdb, col.ID, &limit); err != nil {
		t.Fatalf("SetWIPLimit: %v", err)
	}
	fresh, err := GetColumn(gdb, col.ID)
	if err != nil {
		t.Fatalf("GetColumn: %v", err)
	}
	if fresh.WIPLimit == nil || *fresh.WIPLimit != 3 {
		t.Errorf("WIPLimit = %v, want 3", fresh.WIPLimit)
	}
}

func TestCheckWIP(t *testing.T) {
	gdb := testDB(t)

	boardID, err := CreateForProject(gdb, "proj-3", models.ProjectKanban)
	if err != nil {
		t.Fatalf("CreateForProject: %v", err)
	}
	col, err := FirstColumn(gdb, boardID)
	if err != nil {
		t.Fatalf("FirstColumn: %v", err)
	}

	limit := 2
	if err := SetWIPLimit(gdb, col.ID, &limit); err != nil {
		t.Fatalf("SetWIPLimit: %v", err)
	}
	col, err = GetColumn(gdb, col.ID)
	if err != nil {
		t.Fatalf("GetColumn: %v", err)
	}

	for i, id := range []string{"iss-1", "iss-2"} {
		iss := models.Issue{
			ID: id, ProjectID: "proj-3", BoardID: boardID, ColumnID: col.ID,
			Title: "t", StatusKey: col.StatusKey, Position: float64((i + 1) * 1000),
			ReporterID: "u-1", Labels: "[]", Components: "[]",
		}
		if err := gdb.Create(&iss).Error; err != nil {
			t.Fatalf("create issue: %v", err)
		}
	}

	err = CheckWIP(gdb, col, "")
	if !apperr.IsKind(err, apperr.KindWIPLimitReached) {
		t.Errorf("CheckWIP at limit = %v, want wip_limit_reached", err)
	}

	// An issue already in the column does not count against itself.
	if err := CheckWIP(gdb, col, "iss-2"); err != nil {
		t.Errorf("CheckWIP excluding resident issue = %v, want nil", err)
	}

	if err := SetWIPLimit(gdb, col.ID, nil); err != nil {
		t.Fatalf("clear WIP limit: %v", err)
	}
	col, _ = GetColumn(gdb, col.ID)
	if err := CheckWIP(gdb, col, ""); err != nil {
		t.Errorf("CheckWIP without limit = %v, want nil", err)
	}
}
