package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestWorkItem_Fields(t *testing.T) {
	typ := reflect.TypeOf(WorkItem{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "ProjectID", "not null")
	assertGormTag(t, typ, "ProjectID", "index")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Status", "default:todo")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Priority", "default:medium")
	assertGormTag(t, typ, "Type", "default:task")
	assertGormTag(t, typ, "BlockerIDs", "-")

	assertFieldType(t, typ, "SprintID", "*string")
	assertFieldType(t, typ, "OwnerID", "*string")
	assertFieldType(t, typ, "ParentID", "*string")
	assertFieldType(t, typ, "BlockerIDs", "[]string")
	assertFieldType(t, typ, "Status", "models.Status")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
	assertFieldType(t, typ, "UpdatedAt", "time.Time")
}

func TestTimestamps_NotManagedByGorm(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(User{}),
		reflect.TypeOf(Team{}),
		reflect.TypeOf(Project{}),
		reflect.TypeOf(Sprint{}),
		reflect.TypeOf(WorkItem{}),
	} {
		assertGormTag(t, typ, "CreatedAt", "autoCreateTime:false")
		assertGormTag(t, typ, "UpdatedAt", "autoUpdateTime:false")
	}
}

func TestWorkItemBlocker_Fields(t *testing.T) {
	typ := reflect.TypeOf(WorkItemBlocker{})

	// Composite primary key
	assertGormTag(t, typ, "WorkItemID", "primaryKey")
	assertGormTag(t, typ, "BlockedBy", "primaryKey")
	assertGormTag(t, typ, "BlockedBy", "index")
}

func TestUser_Fields(t *testing.T) {
	typ := reflect.TypeOf(User{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "Email", "uniqueIndex")
	assertGormTag(t, typ, "Email", "not null")
	assertGormTag(t, typ, "Role", "default:team_member")
	assertGormTag(t, typ, "TeamID", "index")

	assertFieldType(t, typ, "TeamID", "*string")
	assertFieldType(t, typ, "Role", "models.Role")
}

func TestTeam_MembersNotPersisted(t *testing.T) {
	typ := reflect.TypeOf(Team{})
	assertGormTag(t, typ, "Members", "-")
	assertFieldType(t, typ, "Members", "[]string")
}

func TestSprint_Fields(t *testing.T) {
	typ := reflect.TypeOf(Sprint{})

	assertGormTag(t, typ, "ProjectID", "not null")
	assertGormTag(t, typ, "Status", "default:planned")
	assertFieldType(t, typ, "StartDate", "time.Time")
	assertFieldType(t, typ, "EndDate", "time.Time")
}

func TestMetricsSnapshot_Fields(t *testing.T) {
	typ := reflect.TypeOf(MetricsSnapshot{})

	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "SprintID", "idx_sprint_taken")
	assertGormTag(t, typ, "TakenAt", "idx_sprint_taken")
	assertFieldType(t, typ, "CompletionPct", "int")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusToDo, false},
		{"To Do", StatusToDo, false},
		{"ToDo", StatusToDo, false},
		{"in_progress", StatusInProgress, false},
		{"In Progress", StatusInProgress, false},
		{"in-review", StatusInReview, false},
		{"DONE", StatusDone, false},
		{" blocked ", StatusBlocked, false},
		{"cancelled", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseEnums_DisplayLabels(t *testing.T) {
	if r, err := ParseRole("Scrum Master"); err != nil || r != RoleScrumMaster {
		t.Errorf("ParseRole(Scrum Master) = %q, %v", r, err)
	}
	if w, err := ParseWorkItemType("Sub-task"); err != nil || w != TypeSubTask {
		t.Errorf("ParseWorkItemType(Sub-task) = %q, %v", w, err)
	}
	if w, err := ParseWorkItemType("User Story"); err != nil || w != TypeUserStory {
		t.Errorf("ParseWorkItemType(User Story) = %q, %v", w, err)
	}
	if p, err := ParsePriority("Critical"); err != nil || p != PriorityCritical {
		t.Errorf("ParsePriority(Critical) = %q, %v", p, err)
	}
	if p, err := ParseProjectType("kanban"); err != nil || p != ProjectKanban {
		t.Errorf("ParseProjectType(kanban) = %q, %v", p, err)
	}
	if s, err := ParseSprintStatus("Active"); err != nil || s != SprintActive {
		t.Errorf("ParseSprintStatus(Active) = %q, %v", s, err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Error("ParseRole(owner) should fail")
	}
}

func TestLabels(t *testing.T) {
	if got := StatusToDo.Label(); got != "To Do" {
		t.Errorf("StatusToDo.Label() = %q", got)
	}
	if got := TypeSubTask.Label(); got != "Sub-task" {
		t.Errorf("TypeSubTask.Label() = %q", got)
	}
	if got := Status("weird").Label(); got != "weird" {
		t.Errorf("unknown status label = %q, want raw value", got)
	}
}

func TestValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("open").Valid() {
		t.Error("open should not be a valid status")
	}
	if Priority("urgent").Valid() {
		t.Error("urgent should not be a valid priority")
	}
}

func TestWorkItem_IsBlocked(t *testing.T) {
	tests := []struct {
		name string
		item WorkItem
		want bool
	}{
		{"plain", WorkItem{Status: StatusToDo}, false},
		{"status blocked", WorkItem{Status: StatusBlocked}, true},
		{"has blockers", WorkItem{Status: StatusInProgress, BlockerIDs: []string{"wi-1"}}, true},
		{"both", WorkItem{Status: StatusBlocked, BlockerIDs: []string{"wi-1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsBlocked(); got != tt.want {
				t.Errorf("IsBlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStandupResponse_Fields(t *testing.T) {
	typ := reflect.TypeOf(StandupResponse{})

	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "ProjectID", "idx_project_submitted")
	assertGormTag(t, typ, "SubmittedAt", "idx_project_submitted")
	assertGormTag(t, typ, "Yesterday", "type:text")
	assertFieldType(t, typ, "SubmittedAt", "time.Time")
}
