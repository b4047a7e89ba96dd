package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SettingsVersion is the current settings snapshot schema version. Snapshots
// written by older versions are migrated forward on load; snapshots from a
// newer version are rejected rather than silently misread.
const SettingsVersion = 2

// UIState remembers where the user last was so the TUI and web UI can
// restore the view. Ids only; entities are resolved at read time and a
// reference to a deleted entity simply falls back to the dashboard.
type UIState struct {
	PillarID  string `json:"pillarId,omitempty"`
	AreaID    string `json:"areaId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Section   string `json:"section,omitempty"`
}

// Settings is the per-user settings snapshot, one JSON file per user under
// <dir>/settings/. Unknown fields are dropped on save; the file is not a
// grab bag.
type Settings struct {
	Version              int     `json:"version"`
	Theme                string  `json:"theme,omitempty"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
	WeekStartsMonday     bool    `json:"weekStartsMonday"`
	AICoachEnabled       bool    `json:"aiCoachEnabled"`
	UIState              UIState `json:"uiState"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Version:              SettingsVersion,
		Theme:                "system",
		NotificationsEnabled: true,
		AICoachEnabled:       true,
	}
}

func (s Store) settingsDir() string {
	return filepath.Join(s.Dir, "settings")
}

func (s Store) settingsPath(userID string) string {
	return filepath.Join(s.settingsDir(), userID+".json")
}

// LoadSettings reads the settings snapshot for userID, migrating older
// versions forward. A missing file yields defaults.
func (s Store) LoadSettings(userID string) (*Settings, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("settings: missing user id")
	}
	b, err := os.ReadFile(s.settingsPath(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	// Probe the version before a strict decode; older snapshots used
	// different shapes for some fields.
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("settings %s: %w", userID, err)
	}
	switch {
	case probe.Version > SettingsVersion:
		return nil, fmt.Errorf("settings %s: snapshot version %d is newer than supported %d", userID, probe.Version, SettingsVersion)
	case probe.Version == SettingsVersion:
		var st Settings
		if err := json.Unmarshal(b, &st); err != nil {
			return nil, fmt.Errorf("settings %s: %w", userID, err)
		}
		return &st, nil
	}

	migrated, err := migrateSettings(probe.Version, b)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", userID, err)
	}
	return migrated, nil
}

// SaveSettings writes the snapshot atomically, keeping a .bak of the
// previous contents.
func (s Store) SaveSettings(userID string, st *Settings) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("settings: missing user id")
	}
	if st == nil {
		return errors.New("settings: nil settings")
	}
	st.Version = SettingsVersion
	if err := os.MkdirAll(s.settingsDir(), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	path := s.settingsPath(userID)
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWrite(path+".bak", prev, 0o644)
	}
	return atomicWrite(path, b, 0o600)
}

// migrateSettings upgrades an old snapshot to the current version. The raw
// bytes are decoded loosely since the shape of some fields changed.
//
// v0 (no version field): flat keys, notifications/coach defaulted on.
// v1: uiState was a bare section string; ids lived at the top level.
func migrateSettings(version int, raw []byte) (*Settings, error) {
	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, err
	}

	st := &Settings{}
	str := func(key string) string {
		var v string
		if b, ok := loose[key]; ok {
			_ = json.Unmarshal(b, &v)
		}
		return v
	}
	boolOr := func(key string, absent bool) bool {
		b, ok := loose[key]
		if !ok {
			return absent
		}
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return absent
		}
		return v
	}

	st.Theme = str("theme")
	st.WeekStartsMonday = boolOr("weekStartsMonday", false)

	if version == 0 {
		// v0 had no explicit booleans; absent means enabled.
		st.NotificationsEnabled = boolOr("notificationsEnabled", true)
		st.AICoachEnabled = boolOr("aiCoachEnabled", true)
		if st.Theme == "" {
			st.Theme = "system"
		}
		version = 1
	} else {
		st.NotificationsEnabled = boolOr("notificationsEnabled", false)
		st.AICoachEnabled = boolOr("aiCoachEnabled", false)
	}

	if version == 1 {
		if b, ok := loose["uiState"]; ok {
			var section string
			if err := json.Unmarshal(b, &section); err == nil {
				st.UIState.Section = section
			}
		}
		st.UIState.PillarID = str("pillarId")
		st.UIState.AreaID = str("areaId")
		st.UIState.ProjectID = str("projectId")
		version = 2
	}

	st.Version = version
	return st, nil
}
