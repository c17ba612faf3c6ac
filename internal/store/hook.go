package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Hook binds an event kind to a plugin action.
type Hook struct {
	ID         string          `json:"id"`
	EventKind  EventKind       `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HookRepository provides CRUD operations for hooks.
type HookRepository struct {
	db *sql.DB
}

// Hooks returns the hook repository.
func (s *Store) Hooks() *HookRepository {
	return &HookRepository{db: s.db}
}

const hookColumns = `id, event_kind, plugin_name, action_name, config, enabled, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHook(row rowScanner) (*Hook, error) {
	h := &Hook{}
	var kind, config string
	var enabled int
	if err := row.Scan(&h.ID, &kind, &h.PluginName, &h.ActionName, &config, &enabled, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.EventKind = EventKind(kind)
	h.Config = json.RawMessage(config)
	h.Enabled = enabled != 0
	return h, nil
}

func hookConfig(h *Hook) string {
	if len(h.Config) == 0 {
		return "{}"
	}
	return string(h.Config)
}

func validateHook(h *Hook) error {
	if !h.EventKind.Valid() {
		return fmt.Errorf("unknown event kind %q", h.EventKind)
	}
	if h.PluginName == "" || h.ActionName == "" {
		return errors.New("plugin and action names are required")
	}
	if len(h.Config) > 0 && !json.Valid(h.Config) {
		return errors.New("hook config is not valid JSON")
	}
	return nil
}

// Create inserts h, assigning an ID when unset.
func (r *HookRepository) Create(h *Hook) error {
	if err := validateHook(h); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(
		`INSERT INTO hooks (`+hookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, string(h.EventKind), h.PluginName, h.ActionName, hookConfig(h), boolInt(h.Enabled), h.CreatedAt,
	)
	return err
}

// GetByID retrieves a hook by ID.
func (r *HookRepository) GetByID(id string) (*Hook, error) {
	h, err := scanHook(r.db.QueryRow(`SELECT `+hookColumns+` FROM hooks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return h, err
}

// List returns all hooks, newest first.
func (r *HookRepository) List() ([]*Hook, error) {
	return r.query(`SELECT ` + hookColumns + ` FROM hooks ORDER BY created_at DESC`)
}

// ForEvent returns the enabled hooks bound to kind, oldest first so they
// run in the order they were added.
func (r *HookRepository) ForEvent(kind EventKind) ([]*Hook, error) {
	return r.query(`SELECT `+hookColumns+` FROM hooks WHERE event_kind = ? AND enabled = 1 ORDER BY created_at`, string(kind))
}

func (r *HookRepository) query(q string, args ...any) ([]*Hook, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hooks := []*Hook{}
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}
	return hooks, rows.Err()
}

// Update overwrites the mutable fields of an existing hook.
func (r *HookRepository) Update(h *Hook) error {
	if err := validateHook(h); err != nil {
		return err
	}
	res, err := r.db.Exec(
		`UPDATE hooks SET event_kind = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		string(h.EventKind), h.PluginName, h.ActionName, hookConfig(h), boolInt(h.Enabled), h.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Delete removes a hook by ID.
func (r *HookRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM hooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
