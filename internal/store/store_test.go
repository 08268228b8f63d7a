package store

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

var epoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(Options{Clock: func() time.Time { return epoch }})
}

// fixture holds one team, user, project and active sprint.
type fixture struct {
	s       *Store
	team    models.Team
	user    models.User
	project models.Project
	sprint  models.Sprint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newTestStore(t)
	team, err := s.CreateTeam(TeamInput{ID: "t1", Name: "Engineering Alpha"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	user, err := s.CreateUser(UserInput{ID: "u1", Email: "admin@tickora.ai", Name: "Alex Rivera", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	project, err := s.CreateProject(ProjectInput{ID: "p1", Name: "Tickora MVP-1", TeamID: team.ID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	sprint, err := s.CreateSprint(SprintInput{
		ID:        "s1",
		ProjectID: project.ID,
		Name:      "Sprint 1: Foundation",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		Status:    models.SprintActive,
	})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	return &fixture{s: s, team: team, user: user, project: project, sprint: sprint}
}

func (f *fixture) item(t *testing.T, in WorkItemInput) models.WorkItem {
	t.Helper()
	if in.ProjectID == "" {
		in.ProjectID = f.project.ID
	}
	if in.Title == "" {
		in.Title = "item " + in.ID
	}
	w, err := f.s.CreateWorkItem(in)
	if err != nil {
		t.Fatalf("CreateWorkItem(%s): %v", in.ID, err)
	}
	return w
}

func ptr[T any](v T) *T { return &v }

func TestCreateWorkItem_Defaults(t *testing.T) {
	f := newFixture(t)
	w := f.item(t, WorkItemInput{Title: "Set up CI"})

	if len(w.ID) != len("wi-")+6 || w.ID[:3] != "wi-" {
		t.Errorf("ID = %q, want wi-xxxxxx", w.ID)
	}
	if w.Type != models.TypeTask {
		t.Errorf("Type = %q, want task", w.Type)
	}
	if w.Status != models.StatusToDo {
		t.Errorf("Status = %q, want todo", w.Status)
	}
	if w.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, want medium", w.Priority)
	}
	if !w.CreatedAt.Equal(w.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", w.CreatedAt, w.UpdatedAt)
	}
	if w.BlockerIDs == nil {
		t.Error("BlockerIDs should be an empty slice, not nil")
	}
}

func TestUpdateWorkItem_UpdatedAtStrictlyIncreases(t *testing.T) {
	f := newFixture(t)
	w := f.item(t, WorkItemInput{ID: "w1"})

	prev := w.UpdatedAt
	for i := range 3 {
		got, err := f.s.UpdateWorkItem("w1", WorkItemPatch{Status: ptr(models.StatusInProgress)})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if !got.UpdatedAt.After(prev) {
			t.Fatalf("update %d: UpdatedAt %v not after %v", i, got.UpdatedAt, prev)
		}
		if !got.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("CreatedAt changed to %v", got.CreatedAt)
		}
		prev = got.UpdatedAt
	}
}

func TestUpdateWorkItem_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.UpdateWorkItem("missing", WorkItemPatch{Title: ptr("x")})
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateWorkItem_ClearsOptionalReferences(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "w1", SprintID: "s1", OwnerID: "u1"})

	w, err := f.s.UpdateWorkItem("w1", WorkItemPatch{SprintID: ptr(""), OwnerID: ptr("")})
	if err != nil {
		t.Fatalf("UpdateWorkItem: %v", err)
	}
	if w.SprintID != nil || w.OwnerID != nil {
		t.Errorf("references not cleared: sprint=%v owner=%v", w.SprintID, w.OwnerID)
	}
	// The user no longer owns anything and can be deleted.
	if err := f.s.DeleteUser("u1"); err != nil {
		t.Errorf("DeleteUser after clearing owner: %v", err)
	}
}

func TestDeleteWorkItem_BlockerReferenced(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "w1"})
	f.item(t, WorkItemInput{ID: "w2", BlockerIDs: []string{"w1"}})

	err := f.s.DeleteWorkItem("w1")
	if !IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if refs := RefsOf(err); !slices.Equal(refs, []string{"w2"}) {
		t.Errorf("refs = %v, want [w2]", refs)
	}

	if _, err := f.s.RemoveBlocker("w2", "w1"); err != nil {
		t.Fatalf("RemoveBlocker: %v", err)
	}
	if err := f.s.DeleteWorkItem("w1"); err != nil {
		t.Fatalf("DeleteWorkItem after unblocking: %v", err)
	}
	if _, err := f.s.GetWorkItem("w1"); !IsNotFound(err) {
		t.Errorf("GetWorkItem after delete: err = %v, want not found", err)
	}
}

func TestDeleteWorkItem_ParentReferenced(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "epic", Type: models.TypeEpic})
	f.item(t, WorkItemInput{ID: "story", ParentID: "epic"})

	err := f.s.DeleteWorkItem("epic")
	if !IsConflict(err) || !slices.Equal(RefsOf(err), []string{"story"}) {
		t.Fatalf("err = %v refs = %v, want conflict [story]", err, RefsOf(err))
	}
}

func TestParentCycle(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "a"})
	f.item(t, WorkItemInput{ID: "b", ParentID: "a"})
	f.item(t, WorkItemInput{ID: "c", ParentID: "b"})

	_, err := f.s.UpdateWorkItem("a", WorkItemPatch{ParentID: ptr("c")})
	if !IsValidation(err) {
		t.Fatalf("transitive cycle: err = %v, want validation", err)
	}
	_, err = f.s.UpdateWorkItem("a", WorkItemPatch{ParentID: ptr("a")})
	if !IsValidation(err) {
		t.Fatalf("self parent: err = %v, want validation", err)
	}
	_, err = f.s.CreateWorkItem(WorkItemInput{ID: "d", ProjectID: "p1", Title: "d", ParentID: "d"})
	if !IsValidation(err) {
		t.Fatalf("create self parent: err = %v, want validation", err)
	}

	a, _ := f.s.GetWorkItem("a")
	if a.ParentID != nil {
		t.Errorf("failed update left parent %v", *a.ParentID)
	}
}

func TestAddBlocker(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "a"})
	f.item(t, WorkItemInput{ID: "b"})
	f.item(t, WorkItemInput{ID: "c"})

	tests := []struct {
		name      string
		item      string
		blocker   string
		wantValid bool // expect validation error
		wantNF    bool
	}{
		{"a blocked by b", "a", "b", false, false},
		{"b blocked by c", "b", "c", false, false},
		{"self", "a", "a", true, false},
		{"direct cycle", "b", "a", true, false},
		{"transitive cycle", "c", "a", true, false},
		{"unknown blocker", "a", "zz", true, false},
		{"unknown item", "zz", "a", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.s.AddBlocker(tt.item, tt.blocker)
			switch {
			case tt.wantValid:
				if !IsValidation(err) {
					t.Errorf("err = %v, want validation", err)
				}
			case tt.wantNF:
				if !IsNotFound(err) {
					t.Errorf("err = %v, want not found", err)
				}
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	deps, err := f.s.Dependents("c")
	if err != nil {
		t.Fatalf("Dependents: %v", err)
	}
	if len(deps) != 1 || deps[0].ID != "b" {
		t.Errorf("Dependents(c) = %v, want [b]", deps)
	}
}

func TestAddBlocker_ExistingEdgeUnchanged(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "a"})
	first, err := f.s.CreateWorkItem(WorkItemInput{ID: "b", ProjectID: "p1", Title: "b", BlockerIDs: []string{"a", "a"}})
	if err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}
	if !slices.Equal(first.BlockerIDs, []string{"a"}) {
		t.Errorf("BlockerIDs = %v, want deduplicated [a]", first.BlockerIDs)
	}
	again, err := f.s.AddBlocker("b", "a")
	if err != nil {
		t.Fatalf("AddBlocker: %v", err)
	}
	if !again.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("re-adding an existing blocker should not touch the item")
	}
}

func TestAddBlocker_BlankID(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, WorkItemInput{ID: "a"})
	f.item(t, WorkItemInput{ID: "b", BlockerIDs: []string{"a"}})

	for _, id := range []string{"", "   "} {
		if _, err := f.s.AddBlocker("a", id); !IsValidation(err) {
			t.Errorf("AddBlocker(a, %q) err = %v, want validation", id, err)
		}
	}
	got, err := f.s.GetWorkItem("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.BlockerIDs) != 0 || !got.UpdatedAt.Equal(a.UpdatedAt) {
		t.Errorf("item changed by a rejected blocker: %v, %v", got.BlockerIDs, got.UpdatedAt)
	}

	b, _ := f.s.GetWorkItem("b")
	again, err := f.s.AddBlocker("b", " a ")
	if err != nil {
		t.Fatalf("AddBlocker padded id: %v", err)
	}
	if !again.UpdatedAt.Equal(b.UpdatedAt) {
		t.Error("a padded existing blocker id should not touch the item")
	}
}

func TestRemoveBlocker_NotPresent(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "a"})
	f.item(t, WorkItemInput{ID: "b"})
	if _, err := f.s.RemoveBlocker("a", "b"); !IsValidation(err) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestCreateWorkItem_References(t *testing.T) {
	f := newFixture(t)
	other, err := f.s.CreateProject(ProjectInput{ID: "p2", Name: "Other", TeamID: "t1"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   WorkItemInput
	}{
		{"missing title", WorkItemInput{ProjectID: "p1"}},
		{"missing project", WorkItemInput{Title: "x"}},
		{"unknown project", WorkItemInput{ProjectID: "nope", Title: "x"}},
		{"unknown sprint", WorkItemInput{ProjectID: "p1", Title: "x", SprintID: "nope"}},
		{"sprint of other project", WorkItemInput{ProjectID: other.ID, Title: "x", SprintID: "s1"}},
		{"unknown owner", WorkItemInput{ProjectID: "p1", Title: "x", OwnerID: "nope"}},
		{"unknown parent", WorkItemInput{ProjectID: "p1", Title: "x", ParentID: "nope"}},
		{"bad status", WorkItemInput{ProjectID: "p1", Title: "x", Status: "open"}},
		{"bad id", WorkItemInput{ID: "has space", ProjectID: "p1", Title: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.s.CreateWorkItem(tt.in)
			if !IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
	if n := count(f.s.ListWorkItems()); n != 0 {
		t.Errorf("failed creates left %d items", n)
	}
}

func TestCreate_ExplicitIDConflict(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.CreateTeam(TeamInput{ID: "t1", Name: "dup"})
	if !IsConflict(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.CreateUser(UserInput{Email: "ADMIN@tickora.ai", Name: "Other"})
	if !IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if !slices.Equal(RefsOf(err), []string{"u1"}) {
		t.Errorf("refs = %v, want [u1]", RefsOf(err))
	}

	u2, err := f.s.CreateUser(UserInput{Email: "sam@tickora.ai", Name: "Sam"})
	if err != nil {
		t.Fatal(err)
	}
	if u2.Role != models.RoleTeamMember {
		t.Errorf("default role = %q", u2.Role)
	}
	if _, err := f.s.UpdateUser(u2.ID, UserPatch{Email: ptr("Admin@Tickora.ai")}); !IsConflict(err) {
		t.Errorf("update to taken email: err = %v, want conflict", err)
	}
	if _, err := f.s.UpdateUser("u1", UserPatch{Email: ptr("ADMIN@tickora.ai")}); err != nil {
		t.Errorf("re-casing own email: %v", err)
	}
	if got, err := f.s.FindUserByEmail("admin@TICKORA.ai"); err != nil || got.ID != "u1" {
		t.Errorf("FindUserByEmail = %v, %v", got.ID, err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		in   UserInput
	}{
		{"missing email", UserInput{Name: "A"}},
		{"bad email", UserInput{Email: "not-an-email", Name: "A"}},
		{"missing name", UserInput{Email: "a@b.co"}},
		{"bad role", UserInput{Email: "a@b.co", Name: "A", Role: "owner"}},
		{"unknown team", UserInput{Email: "a@b.co", Name: "A", TeamID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateUser(tt.in); !IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestSprint_SingleActivePerProject(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	in := SprintInput{ProjectID: "p1", Name: "Sprint 2", StartDate: start, EndDate: start.AddDate(0, 0, 13), Status: models.SprintActive}
	if _, err := f.s.CreateSprint(in); !IsConflict(err) {
		t.Fatalf("second active sprint: err = %v, want conflict", err)
	}

	in.Status = ""
	s2, err := f.s.CreateSprint(in)
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	if s2.Status != models.SprintPlanned {
		t.Errorf("default status = %q", s2.Status)
	}
	if _, err := f.s.UpdateSprint(s2.ID, SprintPatch{Status: ptr(models.SprintActive)}); !IsConflict(err) {
		t.Fatalf("activate second: err = %v, want conflict", err)
	}
	if _, err := f.s.UpdateSprint("s1", SprintPatch{Status: ptr(models.SprintCompleted)}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.s.UpdateSprint(s2.ID, SprintPatch{Status: ptr(models.SprintActive)}); err != nil {
		t.Fatalf("activate after completing s1: %v", err)
	}
	active, ok, err := f.s.ActiveSprint("p1")
	if err != nil || !ok || active.ID != s2.ID {
		t.Errorf("ActiveSprint = %v, %v, %v; want %s", active.ID, ok, err, s2.ID)
	}
}

func TestSprint_DatesOrdered(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.UpdateSprint("s1", SprintPatch{EndDate: ptr(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))})
	if !IsValidation(err) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestActiveSprint_None(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateTeam(TeamInput{ID: "t1", Name: "T"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateProject(ProjectInput{ID: "p1", Name: "P", TeamID: "t1", Type: models.ProjectKanban}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.ActiveSprint("p1"); ok || err != nil {
		t.Errorf("ActiveSprint = %v, %v; want none", ok, err)
	}
	if _, _, err := s.ActiveSprint("nope"); !IsNotFound(err) {
		t.Errorf("unknown project: err = %v", err)
	}
}

func TestDeletePolicy(t *testing.T) {
	f := newFixture(t)
	if _, err := f.s.AddTeamMember("t1", "u1"); err != nil {
		t.Fatal(err)
	}
	f.item(t, WorkItemInput{ID: "w1", SprintID: "s1", OwnerID: "u1"})

	tests := []struct {
		name     string
		del      func() error
		wantRefs []string
	}{
		{"user owns item and is on team", func() error { return f.s.DeleteUser("u1") }, []string{"t1", "w1"}},
		{"team has member and project", func() error { return f.s.DeleteTeam("t1") }, []string{"p1", "u1"}},
		{"project has sprint and item", func() error { return f.s.DeleteProject("p1") }, []string{"s1", "w1"}},
		{"sprint has item", func() error { return f.s.DeleteSprint("s1") }, []string{"w1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.del()
			if !IsConflict(err) {
				t.Fatalf("err = %v, want conflict", err)
			}
			if !slices.Equal(RefsOf(err), tt.wantRefs) {
				t.Errorf("refs = %v, want %v", RefsOf(err), tt.wantRefs)
			}
		})
	}

	// Unwind in dependency order.
	steps := []func() error{
		func() error { return f.s.DeleteWorkItem("w1") },
		func() error { return f.s.DeleteSprint("s1") },
		func() error { _, err := f.s.RemoveTeamMember("t1", "u1"); return err },
		func() error { return f.s.DeleteUser("u1") },
		func() error { return f.s.DeleteProject("p1") },
		func() error { return f.s.DeleteTeam("t1") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	snap := f.s.Snapshot()
	if len(snap.Users)+len(snap.Teams)+len(snap.Projects)+len(snap.Sprints)+len(snap.WorkItems) != 0 {
		t.Errorf("store not empty after unwinding: %+v", snap)
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := newTestStore(t)
	for name, del := range map[string]func(string) error{
		"user": s.DeleteUser, "team": s.DeleteTeam, "project": s.DeleteProject,
		"sprint": s.DeleteSprint, "item": s.DeleteWorkItem,
	} {
		if err := del("nope"); !IsNotFound(err) {
			t.Errorf("%s: err = %v, want not found", name, err)
		}
	}
}

func TestTeamMembership(t *testing.T) {
	f := newFixture(t)
	t2, err := f.s.CreateTeam(TeamInput{ID: "t2", Name: "Beta"})
	if err != nil {
		t.Fatal(err)
	}

	team, err := f.s.AddTeamMember("t1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(team.Members, []string{"u1"}) {
		t.Errorf("Members = %v", team.Members)
	}
	if !team.UpdatedAt.After(f.team.UpdatedAt) {
		t.Error("membership change should bump team UpdatedAt")
	}

	// Adding to t2 moves the user off t1.
	if _, err := f.s.AddTeamMember(t2.ID, "u1"); err != nil {
		t.Fatal(err)
	}
	t1, _ := f.s.GetTeam("t1")
	if len(t1.Members) != 0 {
		t.Errorf("t1 members = %v, want empty", t1.Members)
	}
	u, _ := f.s.GetUser("u1")
	if u.TeamID == nil || *u.TeamID != "t2" {
		t.Errorf("user team = %v, want t2", u.TeamID)
	}
	if n := count(f.s.ListUsers(UsersInTeam("t2"))); n != 1 {
		t.Errorf("UsersInTeam(t2) = %d", n)
	}

	if _, err := f.s.RemoveTeamMember("t1", "u1"); !IsValidation(err) {
		t.Errorf("remove non-member: err = %v, want validation", err)
	}
	if _, err := f.s.AddTeamMember("t1", "nope"); !IsValidation(err) {
		t.Errorf("add unknown user: err = %v, want validation", err)
	}
	if _, err := f.s.AddTeamMember("nope", "u1"); !IsNotFound(err) {
		t.Errorf("add to unknown team: err = %v, want not found", err)
	}
}

func TestList_LazyAndRestartable(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "w2", Status: models.StatusDone})
	f.item(t, WorkItemInput{ID: "w1"})

	seq := f.s.ListWorkItems(ItemsInProject("p1"))
	var ids []string
	for w := range seq {
		ids = append(ids, w.ID)
	}
	if !slices.Equal(ids, []string{"w1", "w2"}) {
		t.Errorf("ids = %v, want id order [w1 w2]", ids)
	}

	f.item(t, WorkItemInput{ID: "w3"})
	if n := count(seq); n != 3 {
		t.Errorf("second range saw %d items, want 3", n)
	}
	if n := count(f.s.ListWorkItems(ItemsWithStatus(models.StatusDone))); n != 1 {
		t.Errorf("done filter = %d, want 1", n)
	}
	either := Any(ItemsWithStatus(models.StatusDone), func(w models.WorkItem) bool { return w.ID == "w3" })
	if n := count(f.s.ListWorkItems(either)); n != 2 {
		t.Errorf("Any filter = %d, want 2", n)
	}

	// Early break stops iteration.
	for range seq {
		break
	}
}

func TestReturnedRecordsDoNotAlias(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "a"})
	w := f.item(t, WorkItemInput{ID: "b", BlockerIDs: []string{"a"}, OwnerID: "u1"})

	w.BlockerIDs[0] = "mutated"
	*w.OwnerID = "mutated"

	got, _ := f.s.GetWorkItem("b")
	if got.BlockerIDs[0] != "a" || *got.OwnerID != "u1" {
		t.Errorf("store memory aliased: %+v", got)
	}
}

func TestConcurrentUpdates_DistinctIDs(t *testing.T) {
	f := newFixture(t)
	const n = 20
	for i := range n {
		f.item(t, WorkItemInput{ID: "w" + string(rune('a'+i))})
	}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.s.UpdateWorkItem(id, WorkItemPatch{Status: ptr(models.StatusDone)}); err != nil {
				t.Errorf("update %s: %v", id, err)
			}
		}("w" + string(rune('a'+i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range f.s.ListWorkItems() {
			}
		}()
	}
	wg.Wait()

	if done := count(f.s.ListWorkItems(ItemsWithStatus(models.StatusDone))); done != n {
		t.Errorf("done = %d, want %d", done, n)
	}
}

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

func TestError_Format(t *testing.T) {
	err := conflict(KindWorkItem, "w1", []string{"w2", "w3"}, "work item is still referenced")
	want := "store: work item w1: work item is still referenced (referenced by w2, w3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		t.Error("errors.Is mismatch")
	}
}

func TestPatch_LengthLimits(t *testing.T) {
	f := newFixture(t)
	f.item(t, WorkItemInput{ID: "w1"})
	long := func(n int) *string { return ptr(strings.Repeat("x", n)) }

	tests := []struct {
		name string
		run  func() error
		want string
	}{
		{"item title", func() error {
			_, err := f.s.UpdateWorkItem("w1", WorkItemPatch{Title: long(257)})
			return err
		}, "title must be at most 256 characters"},
		{"user avatar", func() error {
			_, err := f.s.UpdateUser("u1", UserPatch{Avatar: long(513)})
			return err
		}, "avatar must be at most 512 characters"},
		{"user name", func() error {
			_, err := f.s.UpdateUser("u1", UserPatch{Name: long(129)})
			return err
		}, "name must be at most 128 characters"},
		{"team name", func() error {
			_, err := f.s.UpdateTeam("t1", TeamPatch{Name: long(129)})
			return err
		}, "name must be at most 128 characters"},
		{"project name", func() error {
			_, err := f.s.UpdateProject("p1", ProjectPatch{Name: long(129)})
			return err
		}, "name must be at most 128 characters"},
		{"sprint name", func() error {
			_, err := f.s.UpdateSprint("s1", SprintPatch{Name: long(129)})
			return err
		}, "name must be at most 128 characters"},
		{"blank title", func() error {
			_, err := f.s.UpdateWorkItem("w1", WorkItemPatch{Title: ptr("  ")})
			return err
		}, "title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !IsValidation(err) {
				t.Fatalf("err = %v, want validation", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want to contain %q", err, tt.want)
			}
		})
	}

	if _, err := f.s.UpdateWorkItem("w1", WorkItemPatch{Title: long(256)}); err != nil {
		t.Errorf("256-character title should be accepted: %v", err)
	}
	if _, err := f.s.UpdateUser("u1", UserPatch{Avatar: ptr("")}); err != nil {
		t.Errorf("clearing the avatar should be accepted: %v", err)
	}
}
