package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func eventTypes(t *testing.T, out []byte) []string {
	t.Helper()
	var types []string
	for _, v := range dataSlice(t, out) {
		types = append(types, strField(t, v.(map[string]any), "type"))
	}
	return types
}

func TestEventsRecordMutations(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)

	out := mustRunCLI(t, "--dir", dir, "events", "list")
	types := eventTypes(t, out)
	want := []string{"user.created", "pillar.created", "area.created", "project.created", "task.created", "task.completed"}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (all: %v)", i, types[i], want[i], types)
		}
	}
}

func TestEventsListFiltersByEntity(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)

	out := mustRunCLI(t, "--dir", dir, "events", "list", "--entity", ids.task)
	types := eventTypes(t, out)
	if len(types) != 2 || types[0] != "task.created" || types[1] != "task.completed" {
		t.Fatalf("entity events = %v, want [task.created task.completed]", types)
	}
	for _, v := range dataSlice(t, out) {
		if got := strField(t, v.(map[string]any), "entityId"); got != ids.task {
			t.Fatalf("entityId = %q, want %q", got, ids.task)
		}
	}
}

func TestEventsTailReturnsNewest(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)

	out := mustRunCLI(t, "--dir", dir, "events", "tail", "--n", "2")
	types := eventTypes(t, out)
	if len(types) != 2 || types[0] != "task.created" || types[1] != "task.completed" {
		t.Fatalf("tail = %v, want the two newest oldest-first", types)
	}
}

func TestDoctorCleanStore(t *testing.T) {
	dir := newTestStore(t)
	seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "doctor")
	env := decodeEnvelope(t, out)
	meta, ok := env["meta"].(map[string]any)
	if !ok {
		t.Fatalf("doctor output missing meta: %s", out)
	}
	if issues, _ := meta["issues"].(float64); issues != 0 {
		t.Fatalf("issues = %v, want 0\n%s", meta["issues"], out)
	}
	if hasErr, _ := meta["hasErrors"].(bool); hasErr {
		t.Fatalf("hasErrors = true on a clean store\n%s", out)
	}

	// --fail only changes the exit code when something is wrong.
	mustRunCLI(t, "--dir", dir, "doctor", "--fail")
}

func TestBackupCreateListRestore(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "backup", "create")
	path := strField(t, dataMap(t, out), "path")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backup file: %v", err)
	}
	if got := filepath.Dir(path); !filepath.IsAbs(path) || got == "" {
		t.Fatalf("backup path = %q, want absolute", path)
	}

	out = mustRunCLI(t, "--dir", dir, "backup", "list")
	if backups := dataSlice(t, out); len(backups) != 1 {
		t.Fatalf("backups = %d, want 1", len(backups))
	}

	// Destroy data, then restore it from the backup.
	mustRunCLI(t, "--dir", dir, "pillars", "delete", ids.pillar)
	if names := pillarNames(t, dir, "--all"); len(names) != 0 {
		t.Fatalf("pillars after delete = %v", names)
	}

	out = mustRunCLI(t, "--dir", dir, "backup", "restore", path)
	restored := dataMap(t, out)
	if got, _ := restored["pillars"].(float64); got != 1 {
		t.Fatalf("restored pillars = %v, want 1", restored["pillars"])
	}

	if names := pillarNames(t, dir); len(names) != 1 || names[0] != "Health" {
		t.Fatalf("pillars after restore = %v, want [Health]", names)
	}
	out = mustRunCLI(t, "--dir", dir, "tasks", "show", ids.task)
	if _, ok := dataMap(t, out)["task"].(map[string]any); !ok {
		t.Fatal("task missing after restore")
	}
}

func TestBackupPruneKeepsNewest(t *testing.T) {
	dir := newTestStore(t)
	seedHierarchy(t, dir)

	for i := 0; i < 3; i++ {
		mustRunCLI(t, "--dir", dir, "backup", "create")
	}
	out := mustRunCLI(t, "--dir", dir, "backup", "prune", "--keep", "1")
	res := dataMap(t, out)
	if removed, _ := res["removed"].(float64); removed != 2 {
		t.Fatalf("removed = %v, want 2", res["removed"])
	}
	if kept, _ := res["kept"].(float64); kept != 1 {
		t.Fatalf("kept = %v, want 1", res["kept"])
	}

	out = mustRunCLI(t, "--dir", dir, "backup", "list")
	if backups := dataSlice(t, out); len(backups) != 1 {
		t.Fatalf("backups after prune = %d, want 1", len(backups))
	}
}
