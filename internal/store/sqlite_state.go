package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aurum-life/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when CLI and server share a dir.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) loadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return loadStateFromSQLite(ctx, db)
}

func (s Store) saveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if st.Version == 0 {
		st.Version = CurrentVersion
	}
	putMeta := func(k, v string) error {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v)
		return err
	}
	if err := putMeta("version", strconv.Itoa(st.Version)); err != nil {
		return err
	}
	if err := putMeta("current_user_id", strings.TrimSpace(st.CurrentUserID)); err != nil {
		return err
	}

	// Replace-all strategy: the snapshot is small enough that rewriting
	// every table in one transaction beats tracking per-row dirtiness.
	tables := []string{
		"users",
		"pillars",
		"areas",
		"projects",
		"tasks",
		"attachments",
	}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for _, u := range st.Users {
		raw, _ := json.Marshal(u)
		if _, err := tx.ExecContext(ctx, `INSERT INTO users(id, email, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			u.ID, u.Email, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.Pillars {
		raw, _ := json.Marshal(p)
		if _, err := tx.ExecContext(ctx, `INSERT INTO pillars(id, user_id, name, rank, archived, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.Name, strings.TrimSpace(p.Rank), boolToInt(p.Archived), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, a := range st.Areas {
		raw, _ := json.Marshal(a)
		if _, err := tx.ExecContext(ctx, `INSERT INTO areas(id, user_id, pillar_id, name, rank, archived, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.UserID, a.PillarID, a.Name, strings.TrimSpace(a.Rank), boolToInt(a.Archived), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.Projects {
		raw, _ := json.Marshal(p)
		deadline := ""
		if p.Deadline != nil {
			deadline = strings.TrimSpace(p.Deadline.Date)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id, user_id, area_id, name, status, priority, deadline, rank, archived, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.AreaID, p.Name, string(p.Status), string(p.Priority), deadline, strings.TrimSpace(p.Rank), boolToInt(p.Archived), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, t := range st.Tasks {
		raw, _ := json.Marshal(t)
		due := ""
		if t.Due != nil {
			due = strings.TrimSpace(t.Due.Date)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(
			id, user_id, project_id,
			name, status, priority, rank,
			due_date, archived,
			json, updated_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.ProjectID,
			t.Name, string(t.Status), string(t.Priority), strings.TrimSpace(t.Rank),
			due, boolToInt(t.Archived),
			string(raw), nowMs,
		); err != nil {
			return err
		}
	}
	for _, at := range st.Attachments {
		raw, _ := json.Marshal(at)
		if _, err := tx.ExecContext(ctx, `INSERT INTO attachments(id, user_id, parent_type, parent_id, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			at.ID, at.UserID, string(at.ParentType), at.ParentID, string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE TABLE IF NOT EXISTS pillars (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rank TEXT NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pillars_user ON pillars(user_id);`,
		`CREATE TABLE IF NOT EXISTS areas (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			pillar_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rank TEXT NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_areas_pillar ON areas(pillar_id);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			area_id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			deadline TEXT NOT NULL,
			rank TEXT NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_area ON projects(area_id);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			rank TEXT NOT NULL,
			due_date TEXT NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);`,
		`CREATE TABLE IF NOT EXISTS attachments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			parent_type TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_parent ON attachments(parent_type, parent_id);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, created_at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at_unixms);`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := NewDB()

	getMeta := func(k string) string {
		var v string
		if err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v); err != nil {
			return ""
		}
		return strings.TrimSpace(v)
	}
	if n, err := strconv.Atoi(getMeta("version")); err == nil && n > 0 {
		out.Version = n
	}
	out.CurrentUserID = getMeta("current_user_id")

	for _, fill := range []func() error{
		func() (err error) { out.Users, err = readJSONRows[model.User](ctx, db, `SELECT json FROM users`); return },
		func() (err error) { out.Pillars, err = readJSONRows[model.Pillar](ctx, db, `SELECT json FROM pillars`); return },
		func() (err error) { out.Areas, err = readJSONRows[model.Area](ctx, db, `SELECT json FROM areas`); return },
		func() (err error) { out.Projects, err = readJSONRows[model.Project](ctx, db, `SELECT json FROM projects`); return },
		func() (err error) { out.Tasks, err = readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks`); return },
		func() (err error) {
			out.Attachments, err = readJSONRows[model.Attachment](ctx, db, `SELECT json FROM attachments`)
			return
		},
	} {
		if err := fill(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// readJSONRows decodes a single-column query of JSON blobs. The result is
// empty rather than nil so snapshots round-trip without nil checks.
func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
