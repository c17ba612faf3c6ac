package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names a journaled interaction.
type EventKind string

const (
	EventActivate EventKind = "activate"
	EventGrab     EventKind = "grab"
	EventRelease  EventKind = "release"
)

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventActivate, EventGrab, EventRelease:
		return true
	}
	return false
}

// Event is one journaled interaction with a scene node.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	NodeID    int       `json:"node_id"`
	NodeKey   string    `json:"node_key"`
	NodeTitle string    `json:"node_title"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository reads and writes the interaction journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the journal repository.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends e to the journal, assigning an ID and timestamp when unset.
func (r *EventRepository) Record(e *Event) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO interaction_events (id, kind, node_id, node_key, node_title, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.NodeID, e.NodeKey, e.NodeTitle, e.Detail, e.CreatedAt.UTC(),
	)
	return err
}

// Get returns the event with the given ID.
func (r *EventRepository) Get(id string) (*Event, error) {
	var e Event
	var kind string
	err := r.db.QueryRow(
		`SELECT id, kind, node_id, node_key, node_title, detail, created_at
		 FROM interaction_events WHERE id = ?`, id,
	).Scan(&e.ID, &kind, &e.NodeID, &e.NodeKey, &e.NodeTitle, &e.Detail, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Kind = EventKind(kind)
	return &e, nil
}

// List returns the most recent events first. A non-positive limit returns
// everything.
func (r *EventRepository) List(limit int) ([]Event, error) {
	query := `SELECT id, kind, node_id, node_key, node_title, detail, created_at
		FROM interaction_events ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.NodeID, &e.NodeKey, &e.NodeTitle, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind returns the number of journaled events per kind.
func (r *EventRepository) CountByKind() (map[EventKind]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM interaction_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[EventKind(kind)] = n
	}
	return counts, rows.Err()
}

// Prune deletes events older than cutoff and returns how many were removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM interaction_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
