package cli

import (
	"strings"
	"testing"
)

func TestUsersCreateUseWhoami(t *testing.T) {
	dir := newTestStore(t)

	out := mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Ana", "--email", "ana@example.com")
	ana := dataMap(t, out)
	anaID := strField(t, ana, "id")
	if got := strField(t, ana, "email"); got != "ana@example.com" {
		t.Fatalf("email = %q", got)
	}
	if lvl, _ := ana["level"].(float64); lvl != 1 {
		t.Fatalf("new user level = %v, want 1", ana["level"])
	}

	// No current user yet: whoami must fail with a hint.
	_, errOut, err := runCLI(t, []string{"--dir", dir, "users", "whoami"})
	if err == nil {
		t.Fatal("whoami without a current user should fail")
	}
	if !strings.Contains(string(errOut), "no current user") {
		t.Fatalf("stderr = %q, want a no-current-user hint", errOut)
	}

	mustRunCLI(t, "--dir", dir, "users", "use", anaID)

	out = mustRunCLI(t, "--dir", dir, "users", "whoami")
	if got := strField(t, dataMap(t, out), "id"); got != anaID {
		t.Fatalf("whoami id = %q, want %q", got, anaID)
	}
}

func TestUsersCreateUseFlagSetsCurrent(t *testing.T) {
	dir := newTestStore(t)

	out := mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Bo", "--email", "bo@example.com", "--use")
	boID := strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "users", "list")
	env := decodeEnvelope(t, out)
	if got, _ := env["currentUserId"].(string); got != boID {
		t.Fatalf("currentUserId = %q, want %q", got, boID)
	}
	if users := dataSlice(t, out); len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
}

func TestUsersDuplicateEmailRejected(t *testing.T) {
	dir := newTestStore(t)

	mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Ana", "--email", "ana@example.com", "--use")
	_, errOut, err := runCLI(t, []string{"--dir", dir, "users", "create", "--name", "Imposter", "--email", "Ana@Example.com"})
	if err == nil {
		t.Fatalf("duplicate email accepted; stderr:\n%s", errOut)
	}
}

func TestUsersSetPasswordThenChangeRequiresCurrent(t *testing.T) {
	dir := newTestStore(t)
	mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Ana", "--email", "ana@example.com", "--use")

	mustRunCLI(t, "--dir", dir, "users", "set-password", "--password", "first-secret-1")

	// Changing again without the current password must fail.
	if _, _, err := runCLI(t, []string{"--dir", dir, "users", "set-password", "--password", "second-secret-2"}); err == nil {
		t.Fatal("password change without --current should fail")
	}

	mustRunCLI(t, "--dir", dir, "users", "set-password", "--current", "first-secret-1", "--password", "second-secret-2")
}

func TestUsersUseUnknownIDFails(t *testing.T) {
	dir := newTestStore(t)
	mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Ana", "--email", "ana@example.com", "--use")

	_, errOut, err := runCLI(t, []string{"--dir", dir, "users", "use", "nope"})
	if err == nil {
		t.Fatal("use with unknown id should fail")
	}
	if !strings.Contains(string(errOut), "nope") {
		t.Fatalf("stderr = %q, want the offending id", errOut)
	}
}
