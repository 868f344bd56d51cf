package store

import (
	"context"
	"encoding/json"
	"time"
)

// Event is one append-only audit entry: what happened to which entity.
type Event struct {
	ID       int64     `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}

// AppendEvent records one mutation in the events table. Best effort: the
// caller has already saved the state, so event-log failures are reported
// but must not be treated as state corruption.
func (s Store) AppendEvent(typ, entityID string, payload any) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	_, err = db.ExecContext(ctx, `INSERT INTO events(ts_unixms, type, entity_id, payload_json) VALUES(?, ?, ?, ?)`,
		time.Now().UTC().UnixMilli(), typ, entityID, string(raw))
	return err
}

// ReadEvents returns events in chronological order. If limit > 0, only the
// most recent limit events are returned (still oldest-first).
func (s Store) ReadEvents(limit int) ([]Event, error) {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, ts_unixms, type, entity_id, payload_json FROM events ORDER BY id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var tsMs int64
		var payload string
		if err := rows.Scan(&ev.ID, &tsMs, &ev.Type, &ev.EntityID, &payload); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(tsMs).UTC()
		var v any
		if err := json.Unmarshal([]byte(payload), &v); err == nil {
			ev.Payload = v
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	if out == nil {
		out = []Event{}
	}
	return out, nil
}

// ReadEventsForEntity returns events matching entityID, oldest first.
func (s Store) ReadEventsForEntity(entityID string, limit int) ([]Event, error) {
	evs, err := s.ReadEvents(0)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, ev := range evs {
		if ev.EntityID == entityID {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	if out == nil {
		out = []Event{}
	}
	return out, nil
}
