package store

// migrate applies the schema. Every statement is idempotent.
func (s *Store) migrate() error {
	migrations := []string{
		// One row per discrete interaction: activation, grab, release.
		`CREATE TABLE IF NOT EXISTS interaction_events (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('activate', 'grab', 'release')),
			node_id INTEGER NOT NULL,
			node_key TEXT NOT NULL DEFAULT '',
			node_title TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		// Plugin actions bound to an event kind.
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			event_kind TEXT NOT NULL CHECK(event_kind IN ('activate', 'grab', 'release')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_interaction_events_created_at ON interaction_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interaction_events_kind ON interaction_events(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_event_kind ON hooks(event_kind)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
