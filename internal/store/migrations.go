package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - one row per emitted snapshot
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Event hands table - one row per hand in a snapshot
		`CREATE TABLE IF NOT EXISTS event_hands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			label TEXT NOT NULL CHECK(label IN ('left', 'right')),
			thumb INTEGER NOT NULL,
			index_finger INTEGER NOT NULL,
			middle INTEGER NOT NULL,
			ring INTEGER NOT NULL,
			pinky INTEGER NOT NULL,
			gesture TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_event_hands_event_id ON event_hands(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
