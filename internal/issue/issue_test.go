package issue

import (
	"fmt"
	"testing"

	"github.com/harborcrm/flowboard/internal/apperr"
	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/project"
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

// fixture is a kanban project with its default board's columns loaded in
// position order: To Do, In Progress, In Review, Done.
type fixture struct {
	projectID string
	boardID   string
	columns   []models.Column
}

func newFixture(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	proj, boardID, err := project.Create(gdb, project.CreateOpts{
		Name:  "Flow",
		Key:   "FLW",
		Owner: project.MemberInfo{UserID: "u-owner"},
		Members: []project.MemberInfo{
			{UserID: "u-member", Email: "member@example.com", DisplayName: "Mia Member"},
		},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	var cols []models.Column
	if err := gdb.Where("board_id = ?", boardID).Order("position ASC").Find(&cols).Error; err != nil {
		t.Fatalf("load columns: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("columns = %d, want 4", len(cols))
	}
	return fixture{projectID: proj.ID, boardID: boardID, columns: cols}
}

func (f fixture) todo() models.Column { return f.columns[0] }
func (f fixture) done() models.Column { return f.columns[3] }

func mustCreate(t *testing.T, gdb *gorm.DB, f fixture, opts CreateOpts) *models.Issue {
	t.Helper()
	if opts.BoardID == "" {
		opts.BoardID = f.boardID
	}
	if opts.ColumnID == "" {
		opts.ColumnID = f.todo().ID
	}
	iss, err := Create(gdb, "u-owner", opts)
	if err != nil {
		t.Fatalf("create issue %q: %v", opts.Title, err)
	}
	return iss
}

func TestCreate_DefaultsAndAppendPosition(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	first := mustCreate(t, gdb, f, CreateOpts{Title: "First"})
	if first.Type != models.TypeTask {
		t.Errorf("type = %q, want task default", first.Type)
	}
	if first.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium default", first.Priority)
	}
	if first.StatusKey != f.todo().StatusKey {
		t.Errorf("statusKey = %q, want column's %q", first.StatusKey, f.todo().StatusKey)
	}
	if first.Position != 1000 {
		t.Errorf("position = %v, want 1000", first.Position)
	}
	if first.Labels != "[]" || first.Components != "[]" {
		t.Errorf("labels/components = %q/%q, want empty arrays", first.Labels, first.Components)
	}
	if first.ReporterID != "u-owner" {
		t.Errorf("reporter = %q, want actor", first.ReporterID)
	}

	second := mustCreate(t, gdb, f, CreateOpts{Title: "Second"})
	if second.Position != 2000 {
		t.Errorf("second position = %v, want 2000", second.Position)
	}
}

func TestCreate_Validation(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	cases := []struct {
		name string
		opts CreateOpts
		kind apperr.Kind
	}{
		{"empty title", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID}, apperr.KindInvalidPayload},
		{"bad type", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID, Title: "t", Type: "incident"}, apperr.KindInvalidPayload},
		{"bad priority", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID, Title: "t", Priority: "urgent"}, apperr.KindInvalidPayload},
		{"missing column", CreateOpts{BoardID: f.boardID, ColumnID: "col-missing", Title: "t"}, apperr.KindColumnNotFound},
		{"bad sprint", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID, Title: "t", SprintID: "sp-x"}, apperr.KindInvalidSprint},
		{"bad assignee", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID, Title: "t", AssigneeID: "u-stranger"}, apperr.KindInvalidAssignee},
		{"bad component", CreateOpts{BoardID: f.boardID, ColumnID: f.todo().ID, Title: "t", Components: []string{"ghost"}}, apperr.KindInvalidComponents},
	}
	for _, tc := range cases {
		_, err := Create(gdb, "u-owner", tc.opts)
		if !apperr.IsKind(err, tc.kind) {
			t.Errorf("%s: err = %v, want %s", tc.name, err, tc.kind)
		}
	}
}

func TestCreate_ColumnMustBeOnBoard(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	// A second project's column is a real row but on the wrong board.
	_, otherBoard, err := project.Create(gdb, project.CreateOpts{
		Name: "Other", Key: "OTH", Owner: project.MemberInfo{UserID: "u-owner"},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	var otherCol models.Column
	if err := gdb.Where("board_id = ?", otherBoard).First(&otherCol).Error; err != nil {
		t.Fatalf("load column: %v", err)
	}

	_, err = Create(gdb, "u-owner", CreateOpts{BoardID: f.boardID, ColumnID: otherCol.ID, Title: "t"})
	if !apperr.IsKind(err, apperr.KindColumnNotFound) {
		t.Errorf("cross-board column = %v, want column_not_found", err)
	}
}

func TestCreate_WIPLimitBlocksNewIssues(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	col := f.todo()
	if err := board.SetWIPLimit(gdb, col.ID, intPtr(1)); err != nil {
		t.Fatalf("set wip: %v", err)
	}
	mustCreate(t, gdb, f, CreateOpts{Title: "Only one fits"})

	_, err := Create(gdb, "u-owner", CreateOpts{BoardID: f.boardID, ColumnID: col.ID, Title: "Overflow"})
	if !apperr.IsKind(err, apperr.KindWIPLimitReached) {
		t.Errorf("create over limit = %v, want wip_limit_reached", err)
	}
}

func TestCreate_EpicReference(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	epic := mustCreate(t, gdb, f, CreateOpts{Title: "Big theme", Type: models.TypeEpic})
	task := mustCreate(t, gdb, f, CreateOpts{Title: "Child", EpicID: epic.ID})
	if task.EpicID == nil || *task.EpicID != epic.ID {
		t.Errorf("epicID = %v, want %s", task.EpicID, epic.ID)
	}

	// A non-epic issue cannot serve as an epic.
	_, err := Create(gdb, "u-owner", CreateOpts{
		BoardID: f.boardID, ColumnID: f.todo().ID, Title: "Bad parent", EpicID: task.ID,
	})
	if !apperr.IsKind(err, apperr.KindInvalidEpic) {
		t.Errorf("non-epic parent = %v, want invalid_epic", err)
	}
}

func TestGet_NonMemberSeesNotFound(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	iss := mustCreate(t, gdb, f, CreateOpts{Title: "Secret"})

	if _, err := Get(gdb, iss.ID, "u-member"); err != nil {
		t.Errorf("Get as member = %v, want nil", err)
	}
	_, err := Get(gdb, iss.ID, "u-stranger")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("Get as stranger = %v, want not_found", err)
	}
}

func TestMove_ReordersAndRetargetsStatus(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	a := mustCreate(t, gdb, f, CreateOpts{Title: "A"})
	b := mustCreate(t, gdb, f, CreateOpts{Title: "B"})

	// Move B to the top of the same column.
	if err := Move(gdb, "u-owner", b.ID, f.todo().ID, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	moved, _ := Get(gdb, b.ID, "u-owner")
	if moved.Position >= 1000 {
		t.Errorf("position = %v, want < 1000 (above A)", moved.Position)
	}

	// Move A into In Progress: status key follows the column.
	inProgress := f.columns[1]
	if err := Move(gdb, "u-owner", a.ID, inProgress.ID, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	movedA, _ := Get(gdb, a.ID, "u-owner")
	if movedA.ColumnID != inProgress.ID || movedA.StatusKey != inProgress.StatusKey {
		t.Errorf("column/status = %s/%s, want %s/%s",
			movedA.ColumnID, movedA.StatusKey, inProgress.ID, inProgress.StatusKey)
	}
}

func TestMove_WIPExcludesTheMovingIssue(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	a := mustCreate(t, gdb, f, CreateOpts{Title: "A"})
	mustCreate(t, gdb, f, CreateOpts{Title: "B"})
	if err := board.SetWIPLimit(gdb, f.todo().ID, intPtr(2)); err != nil {
		t.Fatalf("set wip: %v", err)
	}

	// Reordering inside a full column is allowed; the limit only applies
	// when entering from elsewhere.
	if err := Move(gdb, "u-owner", a.ID, f.todo().ID, 1); err != nil {
		t.Errorf("reorder within full column = %v, want nil", err)
	}

	c := mustCreate(t, gdb, f, CreateOpts{Title: "C", ColumnID: f.columns[1].ID})
	err := Move(gdb, "u-owner", c.ID, f.todo().ID, 0)
	if !apperr.IsKind(err, apperr.KindWIPLimitReached) {
		t.Errorf("move into full column = %v, want wip_limit_reached", err)
	}
}

func TestMove_DoneGates(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	story := mustCreate(t, gdb, f, CreateOpts{Title: "Story", Type: models.TypeStory})
	err := Move(gdb, "u-owner", story.ID, f.done().ID, 0)
	if !apperr.IsKind(err, apperr.KindMissingAcceptance) {
		t.Errorf("story without criteria = %v, want missing_acceptance_criteria", err)
	}
	// The rejected move leaves the issue where it was.
	unchanged, _ := Get(gdb, story.ID, "u-owner")
	if unchanged.ColumnID != f.todo().ID {
		t.Errorf("story moved to %s despite rejection", unchanged.ColumnID)
	}

	defect := mustCreate(t, gdb, f, CreateOpts{Title: "Defect", Type: models.TypeDefect})
	err = Move(gdb, "u-owner", defect.ID, f.done().ID, 0)
	if !apperr.IsKind(err, apperr.KindMissingDescription) {
		t.Errorf("defect without description = %v, want missing_description", err)
	}

	ready := mustCreate(t, gdb, f, CreateOpts{
		Title: "Ready", Type: models.TypeStory, AcceptanceCriteria: "it works",
	})
	if err := Move(gdb, "u-owner", ready.ID, f.done().ID, 0); err != nil {
		t.Errorf("story with criteria = %v, want nil", err)
	}
}

func TestLinks(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	a := mustCreate(t, gdb, f, CreateOpts{Title: "A"})
	b := mustCreate(t, gdb, f, CreateOpts{Title: "B"})

	err := AddLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, a.ID)
	if !apperr.IsKind(err, apperr.KindCannotLinkSelf) {
		t.Errorf("self link = %v, want cannot_link_self", err)
	}
	err = AddLink(gdb, "u-owner", a.ID, "duplicates", b.ID)
	if !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Errorf("bad link type = %v, want invalid_payload", err)
	}
	err = AddLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, "iss-ghost")
	if !apperr.IsKind(err, apperr.KindInvalidOtherIssue) {
		t.Errorf("missing target = %v, want invalid_other_issue", err)
	}

	if err := AddLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, b.ID); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	// Duplicate links are absorbed silently.
	if err := AddLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, b.ID); err != nil {
		t.Errorf("duplicate link = %v, want nil", err)
	}
	var count int64
	gdb.Model(&models.IssueLink{}).Where("issue_id = ?", a.ID).Count(&count)
	if count != 1 {
		t.Errorf("link rows = %d, want 1", count)
	}

	blocked, err := IsBlocked(gdb, a.ID)
	if err != nil || !blocked {
		t.Errorf("IsBlocked = %v, %v, want true", blocked, err)
	}

	if err := RemoveLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, b.ID); err != nil {
		t.Fatalf("RemoveLink: %v", err)
	}
	blocked, _ = IsBlocked(gdb, a.ID)
	if blocked {
		t.Error("still blocked after link removal")
	}
	err = RemoveLink(gdb, "u-owner", a.ID, models.LinkBlockedBy, b.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("remove missing link = %v, want not_found", err)
	}
}

func TestLinks_CrossProjectRejected(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	a := mustCreate(t, gdb, f, CreateOpts{Title: "A"})

	_, otherBoard, err := project.Create(gdb, project.CreateOpts{
		Name: "Other", Key: "OTH", Owner: project.MemberInfo{UserID: "u-owner"},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	var otherCol models.Column
	if err := gdb.Where("board_id = ?", otherBoard).First(&otherCol).Error; err != nil {
		t.Fatalf("load column: %v", err)
	}
	foreign, err := Create(gdb, "u-owner", CreateOpts{BoardID: otherBoard, ColumnID: otherCol.ID, Title: "X"})
	if err != nil {
		t.Fatalf("create foreign issue: %v", err)
	}

	err = AddLink(gdb, "u-owner", a.ID, models.LinkRelatesTo, foreign.ID)
	if !apperr.IsKind(err, apperr.KindInvalidOtherIssue) {
		t.Errorf("cross-project link = %v, want invalid_other_issue", err)
	}
}

func TestComments_MentionsRideTheEvent(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	iss := mustCreate(t, gdb, f, CreateOpts{Title: "Discuss"})

	if _, err := AddComment(gdb, "u-owner", iss.ID, ""); !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Errorf("empty body = %v, want invalid_payload", err)
	}

	c, err := AddComment(gdb, "u-owner", iss.ID, "please look @member")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.AuthorID != "u-owner" || c.IssueID != iss.ID {
		t.Errorf("comment = %+v", c)
	}

	var ev models.Activity
	if err := gdb.Where("kind = ? AND issue_id = ?", models.ActIssueCommented, iss.ID).First(&ev).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	// The mentioned member was resolved into the event meta; fan-out turned
	// it into a mentioned-kind notification.
	var mentioned int64
	gdb.Model(&models.Notification{}).
		Where("user_id = ? AND kind = ?", "u-member", models.NotifyMentioned).Count(&mentioned)
	if mentioned != 1 {
		t.Errorf("mention notifications = %d, want 1", mentioned)
	}

	list, err := Comments(gdb, iss.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("Comments = %v, %v, want one comment", list, err)
	}
}

func TestUpdate_PatchSemantics(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	iss := mustCreate(t, gdb, f, CreateOpts{
		Title: "Patch me", AssigneeID: "u-member", StoryPoints: intPtr(5),
	})

	empty := ""
	if err := Update(gdb, "u-owner", iss.ID, Patch{Title: &empty}); !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Errorf("empty title = %v, want invalid_payload", err)
	}

	// Clearing references via empty-string pointers.
	err := Update(gdb, "u-owner", iss.ID, Patch{AssigneeID: &empty, ClearStoryPoints: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	fresh, _ := Get(gdb, iss.ID, "u-owner")
	if fresh.AssigneeID != nil {
		t.Errorf("assignee = %v, want cleared", *fresh.AssigneeID)
	}
	if fresh.StoryPoints != nil {
		t.Errorf("storyPoints = %v, want cleared", *fresh.StoryPoints)
	}

	labels := []string{"bug", "needs-qa"}
	title := "Patched"
	if err := Update(gdb, "u-owner", iss.ID, Patch{Title: &title, Labels: &labels}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fresh, _ = Get(gdb, iss.ID, "u-owner")
	if fresh.Title != "Patched" || fresh.Labels != `["bug","needs-qa"]` {
		t.Errorf("title/labels = %q/%q", fresh.Title, fresh.Labels)
	}

	// An all-nil patch writes nothing and still succeeds.
	if err := Update(gdb, "u-owner", iss.ID, Patch{}); err != nil {
		t.Errorf("empty patch = %v, want nil", err)
	}
}

func TestBulkUpdate(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	a := mustCreate(t, gdb, f, CreateOpts{Title: "A", Labels: []string{"old"}})
	b := mustCreate(t, gdb, f, CreateOpts{Title: "B"})

	if _, err := BulkUpdate(gdb, "u-owner", nil, BulkPatch{}); !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Errorf("no ids = %v, want invalid_payload", err)
	}

	res, err := BulkUpdate(gdb, "u-owner", []string{a.ID, b.ID}, BulkPatch{
		SetAssignee:  "u-member",
		AddLabels:    []string{"triaged"},
		RemoveLabels: []string{"old"},
	})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if res.Matched != 2 || res.Modified != 2 {
		t.Errorf("result = %+v, want 2 matched/2 modified", res)
	}

	freshA, _ := Get(gdb, a.ID, "u-owner")
	if freshA.AssigneeID == nil || *freshA.AssigneeID != "u-member" {
		t.Errorf("assignee = %v, want u-member", freshA.AssigneeID)
	}
	if freshA.Labels != `["triaged"]` {
		t.Errorf("labels = %q, want [\"triaged\"]", freshA.Labels)
	}

	var ev int64
	gdb.Model(&models.Activity{}).Where("kind = ?", models.ActIssueBulkUpdated).Count(&ev)
	if ev != 1 {
		t.Errorf("bulk events = %d, want a single event for the batch", ev)
	}
}

func TestBulkUpdate_MixedProjects(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	a := mustCreate(t, gdb, f, CreateOpts{Title: "A"})

	_, otherBoard, err := project.Create(gdb, project.CreateOpts{
		Name: "Other", Key: "OTH", Owner: project.MemberInfo{UserID: "u-owner"},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	var otherCol models.Column
	if err := gdb.Where("board_id = ?", otherBoard).First(&otherCol).Error; err != nil {
		t.Fatalf("load column: %v", err)
	}
	foreign, err := Create(gdb, "u-owner", CreateOpts{BoardID: otherBoard, ColumnID: otherCol.ID, Title: "X"})
	if err != nil {
		t.Fatalf("create foreign issue: %v", err)
	}

	_, err = BulkUpdate(gdb, "u-owner", []string{a.ID, foreign.ID}, BulkPatch{ClearAssignee: true})
	if !apperr.IsKind(err, apperr.KindMixedProjects) {
		t.Errorf("mixed bulk = %v, want mixed_projects", err)
	}
}

func TestBulkUpdate_LabelCap(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)
	a := mustCreate(t, gdb, f, CreateOpts{Title: "A", Labels: []string{"keep"}})

	many := make([]string, 60)
	for i := range many {
		many[i] = fmt.Sprintf("label-%d", i)
	}
	_, err := BulkUpdate(gdb, "u-owner", []string{a.ID}, BulkPatch{AddLabels: many})
	if !apperr.IsKind(err, apperr.KindInvalidPayload) {
		t.Fatalf("bulk past label cap = %v, want invalid_payload", err)
	}

	// The transaction rolled back; the issue keeps its original label.
	fresh, _ := Get(gdb, a.ID, "u-owner")
	if fresh.Labels != `["keep"]` {
		t.Errorf("labels = %q, want unchanged [\"keep\"]", fresh.Labels)
	}
}

func TestApplySetOps(t *testing.T) {
	got := applySetOps([]string{"a", "b", "b"}, []string{"b", "c"}, []string{"a"})
	want := []string{"b", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("applySetOps = %v, want %v", got, want)
	}
}

func TestEpicRollups(t *testing.T) {
	gdb := testDB(t)
	f := newFixture(t, gdb)

	epic := mustCreate(t, gdb, f, CreateOpts{Title: "Theme", Type: models.TypeEpic})
	mustCreate(t, gdb, f, CreateOpts{Title: "Open", EpicID: epic.ID, StoryPoints: intPtr(3)})
	done := mustCreate(t, gdb, f, CreateOpts{
		Title: "Closed", Type: models.TypeStory, EpicID: epic.ID,
		StoryPoints: intPtr(5), AcceptanceCriteria: "ok",
	})
	if err := Move(gdb, "u-owner", done.ID, f.done().ID, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}

	rollups, err := EpicRollups(gdb, f.projectID)
	if err != nil {
		t.Fatalf("EpicRollups: %v", err)
	}
	if len(rollups) != 1 {
		t.Fatalf("rollups = %d, want 1", len(rollups))
	}
	r := rollups[0]
	if r.EpicID != epic.ID || r.TotalIssues != 2 || r.DoneIssues != 1 {
		t.Errorf("rollup = %+v, want 2 total / 1 done", r)
	}
	if r.TotalPoints != 8 || r.DonePoints != 5 {
		t.Errorf("points = %d/%d, want 8 total / 5 done", r.TotalPoints, r.DonePoints)
	}
}

func intPtr(n int) *int { return &n }
