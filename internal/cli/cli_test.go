package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

// runCLI executes one command line against a fresh root command, the same
// entry production uses, and captures both streams.
func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRunCLI(t *testing.T, args ...string) []byte {
	t.Helper()
	out, errOut, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("aurum %v: %v\nstderr:\n%s", args, err, errOut)
	}
	return out
}

// newTestStore isolates a test from the developer's real config and store.
func newTestStore(t *testing.T) string {
	t.Helper()
	t.Setenv("AURUM_CONFIG_DIR", t.TempDir())
	return t.TempDir()
}

func decodeEnvelope(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	return env
}

// dataMap returns the "data" object of a command's JSON output.
func dataMap(t *testing.T, out []byte) map[string]any {
	t.Helper()
	env := decodeEnvelope(t, out)
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("output data is %T, want object\n%s", env["data"], out)
	}
	return m
}

// dataSlice returns the "data" array of a command's JSON output.
func dataSlice(t *testing.T, out []byte) []any {
	t.Helper()
	env := decodeEnvelope(t, out)
	if env["data"] == nil {
		return nil
	}
	s, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("output data is %T, want array\n%s", env["data"], out)
	}
	return s
}

func strField(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	v, ok := m[key].(string)
	if !ok || v == "" {
		t.Fatalf("field %q missing or empty in %v", key, m)
	}
	return v
}

type seededIDs struct {
	user    string
	pillar  string
	area    string
	project string
	task    string
}

// seedHierarchy builds user → pillar → area → project → task through the CLI
// itself, so the fixtures exercise the same paths production does.
func seedHierarchy(t *testing.T, dir string) seededIDs {
	t.Helper()
	var ids seededIDs

	out := mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Ana", "--email", "ana@example.com", "--use")
	ids.user = strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Health", "--time-allocation", "30")
	ids.pillar = strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "areas", "create", "--pillar", ids.pillar, "--name", "Fitness", "--importance", "4")
	ids.area = strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "projects", "create", "--area", ids.area, "--name", "5k plan", "--priority", "high")
	ids.project = strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Run intervals", "--priority", "high")
	ids.task = strField(t, dataMap(t, out), "id")

	return ids
}
