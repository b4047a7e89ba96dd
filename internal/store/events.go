package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"aurum-life/internal/model"
)

func (s Store) appendEventSQLite(ctx context.Context, userID, typ, entityID string, payload any) error {
	userID = strings.TrimSpace(userID)
	typ = strings.TrimSpace(typ)
	entityID = strings.TrimSpace(entityID)
	if userID == "" {
		return errors.New("event: missing user id")
	}
	if typ == "" {
		return errors.New("event: missing type")
	}
	if entityID == "" {
		return errors.New("event: missing entity id")
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	pb, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	_, err = db.ExecContext(ctx, `INSERT INTO events(event_id, user_id, type, entity_id, payload_json, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		NewID(), userID, typ, entityID, string(pb), nowMs)
	return err
}

// ReadEvents returns events oldest-first; limit <= 0 means all.
func (s Store) ReadEvents(limit int) ([]model.Event, error) {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, created_at_unixms, user_id, type, entity_id, payload_json
	      FROM events
	      ORDER BY created_at_unixms ASC, rowid ASC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadEventsTail returns the newest n events, oldest-first.
func (s Store) ReadEventsTail(n int) ([]model.Event, error) {
	if n <= 0 {
		return []model.Event{}, nil
	}
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT event_id, created_at_unixms, user_id, type, entity_id, payload_json FROM (
			SELECT rowid AS rid, event_id, created_at_unixms, user_id, type, entity_id, payload_json
			FROM events
			ORDER BY created_at_unixms DESC, rowid DESC
			LIMIT ?
		) ORDER BY created_at_unixms ASC, rid ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadEventsForEntity returns events for one entity, oldest-first; limit <= 0 means all.
func (s Store) ReadEventsForEntity(entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, created_at_unixms, user_id, type, entity_id, payload_json
	      FROM events
	      WHERE entity_id = ?
	      ORDER BY created_at_unixms ASC, rowid ASC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, entityID, limit)
	} else {
		rows, err = db.QueryContext(ctx, q, entityID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var out []model.Event
	for rows.Next() {
		var id, user, typ, entityID, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &tsMs, &user, &typ, &entityID, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			UserID:   user,
			Type:     typ,
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}
