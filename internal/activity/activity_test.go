package activity

import (
	"testing"
	"time"

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
	if err := gdb.AutoMigrate(&models.Activity{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func TestMeta_EncodeDecode(t *testing.T) {
	raw := Meta{"issueTitle": "Fix login", "mentions": []string{"u-1", "u-2"}}.Encode()
	meta := DecodeMeta(raw)
	if meta["issueTitle"] != "Fix login" {
		t.Errorf(`issueTitle = %v`, meta["issueTitle"])
	}
	mentions := meta.StringsAt("mentions")
	if len(mentions) != 2 || mentions[0] != "u-1" || mentions[1] != "u-2" {
		t.Errorf("mentions = %v, want [u-1 u-2]", mentions)
	}
}

func TestMeta_EncodeEmpty(t *testing.T) {
	if got := Meta(nil).Encode(); got != "{}" {
		t.Errorf("Encode(nil) = %q, want {}", got)
	}
}

func TestDecodeMeta_Garbage(t *testing.T) {
	meta := DecodeMeta("{broken json")
	if len(meta) != 0 {
		t.Errorf("DecodeMeta(garbage) = %v, want empty", meta)
	}
	if got := meta.StringsAt("mentions"); got != nil {
		t.Errorf("StringsAt on empty = %v, want nil", got)
	}
}

func TestStringsAt_WrongShape(t *testing.T) {
	meta := Meta{"mentions": "not-an-array", "n": 3}
	if got := meta.StringsAt("mentions"); got != nil {
		t.Errorf("StringsAt(string value) = %v, want nil", got)
	}
	if got := meta.StringsAt("n"); got != nil {
		t.Errorf("StringsAt(number value) = %v, want nil", got)
	}
}

func TestRecord_FillsDefaults(t *testing.T) {
	gdb := testDB(t)

	ev := &models.Activity{ProjectID: "proj-1", ActorID: "u-1", Kind: models.ActIssueCreated}
	if err := Record(gdb, ev); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ev.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
	if ev.Meta != "{}" {
		t.Errorf("Meta = %q, want {}", ev.Meta)
	}
	if ev.ID == 0 {
		t.Error("ID not assigned")
	}
}

func TestList_FiltersAndOrder(t *testing.T) {
	gdb := testDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	events := []models.Activity{
		{ProjectID: "proj-1", ActorID: "u-1", Kind: models.ActIssueCreated, IssueID: "iss-1", CreatedAt: base},
		{ProjectID: "proj-1", ActorID: "u-2", Kind: models.ActIssueMoved, IssueID: "iss-1", CreatedAt: base.Add(time.Hour)},
		{ProjectID: "proj-1", ActorID: "u-1", Kind: models.ActIssueMoved, IssueID: "iss-2", CreatedAt: base.Add(2 * time.Hour)},
		{ProjectID: "proj-2", ActorID: "u-1", Kind: models.ActIssueCreated, IssueID: "iss-9", CreatedAt: base},
	}
	for i := range events {
		if err := Record(gdb, &events[i]); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := List(gdb, "proj-1", ListFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("events not newest first")
	}

	moved, err := List(gdb, "proj-1", ListFilters{Kind: models.ActIssueMoved})
	if err != nil {
		t.Fatalf("List kind: %v", err)
	}
	if len(moved) != 2 {
		t.Errorf("kind filter len = %d, want 2", len(moved))
	}

	byIssue, err := List(gdb, "proj-1", ListFilters{IssueID: "iss-1"})
	if err != nil {
		t.Fatalf("List issue: %v", err)
	}
	if len(byIssue) != 2 {
		t.Errorf("issue filter len = %d, want 2", len(byIssue))
	}

	since := base.Add(90 * time.Minute)
	recent, err := List(gdb, "proj-1", ListFilters{Since: &since})
	if err != nil {
		t.Fatalf("List since: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("since filter len = %d, want 1", len(recent))
	}

	limited, err := List(gdb, "proj-1", ListFilters{Limit: 2})
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit len = %d, want 2", len(limited))
	}
}
