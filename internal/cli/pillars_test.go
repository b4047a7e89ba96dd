package cli

import (
	"strings"
	"testing"
)

func pillarNames(t *testing.T, dir string, extra ...string) []string {
	t.Helper()
	args := append([]string{"--dir", dir, "pillars", "list"}, extra...)
	out := mustRunCLI(t, args...)
	var names []string
	for _, v := range dataSlice(t, out) {
		names = append(names, strField(t, v.(map[string]any), "name"))
	}
	return names
}

func TestPillarsCreateListShow(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Career", "--icon", "💼")
	career := dataMap(t, out)
	if got := strField(t, career, "icon"); got != "💼" {
		t.Fatalf("icon = %q", got)
	}

	if names := pillarNames(t, dir); len(names) != 2 || names[0] != "Health" || names[1] != "Career" {
		t.Fatalf("pillars = %v, want [Health Career]", names)
	}

	out = mustRunCLI(t, "--dir", dir, "pillars", "show", ids.pillar)
	data := dataMap(t, out)
	pillar, ok := data["pillar"].(map[string]any)
	if !ok {
		t.Fatalf("show data has no pillar object: %v", data)
	}
	if got := strField(t, pillar, "name"); got != "Health" {
		t.Fatalf("pillar name = %q", got)
	}
	areas, ok := data["areas"].([]any)
	if !ok || len(areas) != 1 {
		t.Fatalf("show areas = %v, want one", data["areas"])
	}
}

func TestPillarsUpdate(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "pillars", "update", ids.pillar, "--name", "Wellbeing", "--time-allocation", "40")
	p := dataMap(t, out)
	if got := strField(t, p, "name"); got != "Wellbeing" {
		t.Fatalf("name = %q", got)
	}
	if got, _ := p["timeAllocationPct"].(float64); got != 40 {
		t.Fatalf("timeAllocationPct = %v, want 40", p["timeAllocationPct"])
	}

	// A no-op update still echoes the pillar.
	out = mustRunCLI(t, "--dir", dir, "pillars", "update", ids.pillar, "--name", "Wellbeing")
	if got := strField(t, dataMap(t, out), "name"); got != "Wellbeing" {
		t.Fatalf("no-op update name = %q", got)
	}
}

func TestPillarsDuplicateDeepCopies(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "pillars", "duplicate", ids.pillar)
	cp := dataMap(t, out)
	cpID := strField(t, cp, "id")
	if cpID == ids.pillar {
		t.Fatal("duplicate reused the source id")
	}
	if got := strField(t, cp, "name"); got != "Health (Copy)" {
		t.Fatalf("copy name = %q", got)
	}

	// The copy lands right after the original and carries the subtree.
	if names := pillarNames(t, dir); len(names) != 2 || names[1] != "Health (Copy)" {
		t.Fatalf("pillars = %v, want copy second", names)
	}
	out = mustRunCLI(t, "--dir", dir, "pillars", "show", cpID)
	if areas, _ := dataMap(t, out)["areas"].([]any); len(areas) != 1 {
		t.Fatalf("copied pillar has %d areas, want 1", len(areas))
	}
}

func TestPillarsReorder(t *testing.T) {
	dir := newTestStore(t)
	seedHierarchy(t, dir)
	out := mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Career")
	careerID := strField(t, dataMap(t, out), "id")
	mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Relationships")

	mustRunCLI(t, "--dir", dir, "pillars", "reorder", careerID, "--at", "0")
	if names := pillarNames(t, dir); names[0] != "Career" {
		t.Fatalf("pillars = %v, want Career first", names)
	}
}

func TestPillarsArchiveHidesFromListUntilUndo(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Career")

	mustRunCLI(t, "--dir", dir, "pillars", "archive", ids.pillar)
	if names := pillarNames(t, dir); len(names) != 1 || names[0] != "Career" {
		t.Fatalf("pillars = %v, want only Career", names)
	}
	if names := pillarNames(t, dir, "--all"); len(names) != 2 {
		t.Fatalf("pillars --all = %v, want both", names)
	}

	mustRunCLI(t, "--dir", dir, "pillars", "archive", ids.pillar, "--undo")
	if names := pillarNames(t, dir); len(names) != 2 {
		t.Fatalf("pillars after undo = %v, want both", names)
	}
}

func TestPillarsDeleteCascades(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "pillars", "delete", ids.pillar)
	res := dataMap(t, out)
	for key, want := range map[string]float64{"pillars": 1, "areas": 1, "projects": 1, "tasks": 1} {
		if got, _ := res[key].(float64); got != want {
			t.Fatalf("delete removed %s = %v, want %v", key, res[key], want)
		}
	}

	if names := pillarNames(t, dir, "--all"); len(names) != 0 {
		t.Fatalf("pillars after delete = %v, want none", names)
	}

	_, _, err := runCLI(t, []string{"--dir", dir, "tasks", "show", ids.task})
	if err == nil {
		t.Fatal("task survived pillar delete")
	}
}

func TestPillarsShowUnknownIDFails(t *testing.T) {
	dir := newTestStore(t)
	seedHierarchy(t, dir)

	_, errOut, err := runCLI(t, []string{"--dir", dir, "pillars", "show", "missing"})
	if err == nil {
		t.Fatal("show with unknown id should fail")
	}
	if !strings.Contains(string(errOut), "missing") {
		t.Fatalf("stderr = %q, want the offending id", errOut)
	}
}
