package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/config"
	"github.com/zulandar/tickora/internal/notify"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "tk dev") {
		t.Errorf("expected output to contain 'tk dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "tk 1.0.0 (commit: abc123, built: 2026-01-01)") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"version", "db", "user", "team", "project", "sprint", "item", "board", "standup", "serve"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q, got: %s", sub, out)
		}
	}
}

func TestSubcommands_HaveConfigFlag(t *testing.T) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.RunE != nil {
			f := c.Flags().Lookup("config")
			if f == nil {
				t.Errorf("%s: missing --config flag", c.CommandPath())
			} else if f.Shorthand != "c" || f.DefValue != config.DefaultPath {
				t.Errorf("%s: --config shorthand=%q default=%q", c.CommandPath(), f.Shorthand, f.DefValue)
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(newRootCmd())
}

func TestItemCreateCmd_RequiredFlags(t *testing.T) {
	cmd := newItemCreateCmd()
	for _, name := range []string{"project", "title"} {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("expected --%s flag", name)
		}
		if ann := f.Annotations[cobra.BashCompOneRequiredFlag]; len(ann) == 0 || ann[0] != "true" {
			t.Errorf("--%s should be required", name)
		}
	}
}

// writeConfig writes a config using a fresh SQLite file and returns its path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tickora.yaml")
	content := fmt.Sprintf(`storage:
  driver: sqlite
  dsn: %s
board:
  columns: [todo, in_progress, done]
  wip_limits:
    in_progress: 1
log:
  level: prod
`, filepath.Join(dir, "tickora.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("tk %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestDBMigrateAndSeed(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, "db", "migrate", "-c", cfg)
	if !strings.Contains(out, "Migrated 8 tables") {
		t.Errorf("migrate output = %q", out)
	}
	out = mustRun(t, "db", "seed", "-c", cfg)
	if !strings.Contains(out, "Seeded 7 records") {
		t.Errorf("first seed output = %q", out)
	}
	out = mustRun(t, "db", "seed", "-c", cfg)
	if !strings.Contains(out, "Seeded 0 records") {
		t.Errorf("second seed output = %q", out)
	}
}

func TestItemLifecycle(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)

	out := mustRun(t, "item", "list", "-c", cfg, "--project", "p1")
	for _, id := range []string{"w1", "w2", "w3"} {
		if !strings.Contains(out, id) {
			t.Errorf("item list missing %s:\n%s", id, out)
		}
	}

	mustRun(t, "item", "create", "-c", cfg, "--id", "w4", "--project", "p1", "--sprint", "s1",
		"--title", "Wire CI", "--type", "Task", "--blocked-by", "w3")
	out = mustRun(t, "item", "show", "-c", cfg, "w4")
	if !strings.Contains(out, "Blocked by:  w3") {
		t.Errorf("show w4 = %s", out)
	}

	// w3 now blocks w4, so it cannot be deleted.
	out, err := run(t, "item", "delete", "-c", cfg, "w3")
	if err == nil || !strings.Contains(out, "referenced by w4") {
		t.Errorf("delete w3: err = %v, out = %s", err, out)
	}
	mustRun(t, "item", "unblock", "-c", cfg, "w4", "w3")
	mustRun(t, "item", "update", "-c", cfg, "w4", "--status", "In Progress", "--owner", "u1")

	out = mustRun(t, "item", "list", "-c", cfg, "--status", "in_progress")
	if !strings.Contains(out, "w2") || !strings.Contains(out, "w4") || strings.Contains(out, "w1") {
		t.Errorf("in progress list = %s", out)
	}

	mustRun(t, "item", "update", "-c", cfg, "w4", "--owner", "")
	out = mustRun(t, "item", "show", "-c", cfg, "w4")
	if !strings.Contains(out, "Owner:       -") {
		t.Errorf("owner should be cleared:\n%s", out)
	}
	mustRun(t, "item", "delete", "-c", cfg, "w3")
}

func TestBoardCmd(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)
	mustRun(t, "item", "create", "-c", cfg, "--project", "p1", "--title", "Second", "--status", "in_progress")

	out := mustRun(t, "board", "-c", cfg, "p1")
	for _, want := range []string{"TO DO (1)", "IN PROGRESS (2/1) over WIP limit", "DONE (1)", "Implement Auth Flow"} {
		if !strings.Contains(out, want) {
			t.Errorf("board missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "board", "-c", cfg, "p1", "--columns", "blocked")
	if !strings.Contains(out, "BLOCKED (0)") || !strings.Contains(out, "(empty)") {
		t.Errorf("blocked board = %s", out)
	}

	if _, err := run(t, "board", "-c", cfg, "nope"); err == nil {
		t.Error("board of unknown project should fail")
	}
}

func TestSprintMetricsCmd(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)

	out := mustRun(t, "sprint", "metrics", "-c", cfg, "s1", "--record")
	if !strings.Contains(out, "Completion:  33% (1/3 done)") {
		t.Errorf("metrics = %s", out)
	}
	if !strings.Contains(out, "Recorded snapshot 1") {
		t.Errorf("expected a recorded snapshot:\n%s", out)
	}
}

func TestSprintCreateCmd_SingleActive(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)

	out, err := run(t, "sprint", "create", "-c", cfg, "--project", "p1", "--name", "Sprint 2",
		"--start", "2026-01-15", "--end", "2026-01-28", "--status", "active")
	if err == nil {
		t.Fatalf("second active sprint should conflict:\n%s", out)
	}
	mustRun(t, "sprint", "update", "-c", cfg, "s1", "--status", "completed")
	mustRun(t, "sprint", "create", "-c", cfg, "--id", "s2", "--project", "p1", "--name", "Sprint 2",
		"--start", "2026-01-15", "--end", "2026-01-28", "--status", "active")
	out = mustRun(t, "sprint", "list", "-c", cfg, "--status", "active")
	if !strings.Contains(out, "s2") || strings.Contains(out, "s1 ") {
		t.Errorf("active sprints = %s", out)
	}
}

func TestUserAndTeamCmds(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)

	mustRun(t, "team", "create", "-c", cfg, "--id", "t2", "--name", "Platform")
	mustRun(t, "user", "create", "-c", cfg, "--id", "u2", "--email", "sam@tickora.ai", "--name", "Sam", "--role", "viewer")
	out := mustRun(t, "team", "add-member", "-c", cfg, "t2", "u2")
	if !strings.Contains(out, "Team t2 members: u2") {
		t.Errorf("add-member = %s", out)
	}

	if _, err := run(t, "team", "delete", "-c", cfg, "t2"); err == nil {
		t.Error("deleting a team with members should fail")
	}
	if _, err := run(t, "user", "create", "-c", cfg, "--email", "Admin@Tickora.ai", "--name", "Dup"); err == nil {
		t.Error("duplicate email should fail")
	}

	mustRun(t, "team", "remove-member", "-c", cfg, "t2", "u2")
	mustRun(t, "user", "delete", "-c", cfg, "u2")
	mustRun(t, "team", "delete", "-c", cfg, "t2")

	out = mustRun(t, "user", "list", "-c", cfg)
	if !strings.Contains(out, "Alex Rivera") || strings.Contains(out, "Sam") {
		t.Errorf("user list = %s", out)
	}
	out = mustRun(t, "team", "show", "-c", cfg, "t1")
	if !strings.Contains(out, "Members:   u1") || !strings.Contains(out, "Projects:  p1") {
		t.Errorf("team show = %s", out)
	}
}

func TestStandupCmds(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "seed", "-c", cfg)

	out := mustRun(t, "standup", "submit", "-c", cfg, "--user", "u1", "--project", "p1",
		"--yesterday", "Completed w2", "--today", "Started w3")
	if !strings.Contains(out, "w2 → Done") || !strings.Contains(out, "w3 → In Progress") {
		t.Errorf("submit = %s", out)
	}

	out = mustRun(t, "standup", "list", "-c", cfg, "--project", "p1")
	if !strings.Contains(out, "u1") || !strings.Contains(out, "Completed w2") {
		t.Errorf("list = %s", out)
	}
	out = mustRun(t, "standup", "list", "-c", cfg, "--project", "p1", "--since", "1ns")
	if !strings.Contains(out, "No standups found.") {
		t.Errorf("list since 1ns = %s", out)
	}
	if _, err := run(t, "standup", "list", "-c", cfg, "--project", "nope"); err == nil {
		t.Error("list of unknown project should fail")
	}

	out = mustRun(t, "standup", "digest", "-c", cfg, "s1")
	if !strings.Contains(out, "Alex Rivera") || !strings.Contains(out, "2/3 done") {
		t.Errorf("digest = %s", out)
	}
}

func TestBuildNotifier(t *testing.T) {
	n, err := buildNotifier(config.NotifyConfig{}, nil)
	if err != nil || n != nil {
		t.Errorf("no platforms: got %v, %v; want nil", n, err)
	}

	n, err = buildNotifier(config.NotifyConfig{
		Slack:   config.ChannelConfig{BotToken: "xoxb-test", Channel: "C1"},
		Discord: config.ChannelConfig{BotToken: "token", Channel: "123"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := n.(notify.Multi)
	if !ok || len(multi) != 2 {
		t.Errorf("notifier = %#v, want Multi of 2", n)
	}
}

func TestDisplayDSN(t *testing.T) {
	if got := displayDSN("mysql", "root:secret@tcp(127.0.0.1:3306)/tickora"); got != "***@tcp(127.0.0.1:3306)/tickora" {
		t.Errorf("mysql = %q", got)
	}
	if got := displayDSN("sqlite", "tickora.db"); got != "tickora.db" {
		t.Errorf("sqlite = %q", got)
	}
}
