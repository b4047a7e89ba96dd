package statusutil

import (
	"testing"

	"aurum-life/internal/model"
)

func TestNextTaskStatus_CyclesThroughAllStates(t *testing.T) {
	got := NextTaskStatus(model.TaskStatusTodo)
	if got != model.TaskStatusInProgress {
		t.Fatalf("todo -> %q, want in_progress", got)
	}
	got = NextTaskStatus(got)
	if got != model.TaskStatusDone {
		t.Fatalf("in_progress -> %q, want done", got)
	}
	got = NextTaskStatus(got)
	if got != model.TaskStatusTodo {
		t.Fatalf("done -> %q, want todo", got)
	}
}

func TestTaskGlyph_DistinctPerStatus(t *testing.T) {
	seen := map[string]model.TaskStatus{}
	for _, s := range []model.TaskStatus{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone} {
		g := TaskGlyph(s)
		if g == "" {
			t.Fatalf("TaskGlyph(%q) = empty", s)
		}
		if prev, dup := seen[g]; dup {
			t.Fatalf("glyph %q used for both %q and %q", g, prev, s)
		}
		seen[g] = s
	}
}

func TestLabel_ReplacesUnderscores(t *testing.T) {
	if got := Label("in_progress"); got != "in progress" {
		t.Fatalf("Label = %q, want %q", got, "in progress")
	}
	if got := Label("  on_hold "); got != "on hold" {
		t.Fatalf("Label = %q, want %q", got, "on hold")
	}
}

func TestWeights_OrderActiveWorkFirst(t *testing.T) {
	if !(TaskStatusWeight(model.TaskStatusInProgress) < TaskStatusWeight(model.TaskStatusTodo)) {
		t.Fatal("in_progress should sort before todo")
	}
	if !(TaskStatusWeight(model.TaskStatusTodo) < TaskStatusWeight(model.TaskStatusDone)) {
		t.Fatal("todo should sort before done")
	}
	if !(PriorityWeight(model.PriorityHigh) < PriorityWeight(model.PriorityMedium)) {
		t.Fatal("high should sort before medium")
	}
	if !(PriorityWeight(model.PriorityMedium) < PriorityWeight(model.PriorityLow)) {
		t.Fatal("medium should sort before low")
	}
}
