package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys.
const (
	SettingCaptureEnabled = "capture_enabled"
)

// SettingsRepository is a string key/value table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var v string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Bool returns the boolean stored under key, or def when missing or
// unparsable.
func (r *SettingsRepository) Bool(key string, def bool) bool {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetBool stores a boolean under key.
func (r *SettingsRepository) SetBool(key string, v bool) error {
	return r.Set(key, strconv.FormatBool(v))
}
