// Package storage provides SQLite-based persistence for the directory
// service: the telemetry pings sent by game hosts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Ping is one telemetry record.
type Ping struct {
	ID        int64
	Client    string
	Map       string
	Balance   string
	Version   string
	Remote    string
	CreatedAt time.Time
}

// MapStats aggregates pings per map.
type MapStats struct {
	Map      string
	Sessions int
	LastSeen time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
// The special path ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		// Expand ~ to home directory
		if dbPath != "" && dbPath[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}

		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS pings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client TEXT NOT NULL,
			map TEXT NOT NULL DEFAULT '',
			balance TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pings_map ON pings(map);
		CREATE INDEX IF NOT EXISTS idx_pings_created ON pings(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordPing stores a ping. Returns the ID of the inserted record.
func (s *Store) RecordPing(ctx context.Context, p Ping) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO pings (client, map, balance, version, remote) VALUES (?, ?, ?, ?, ?)",
		p.Client, p.Map, p.Balance, p.Version, p.Remote,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save ping: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentPings returns the newest pings first.
func (s *Store) RecentPings(ctx context.Context, limit int) ([]Ping, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client, map, balance, version, remote, created_at
		 FROM pings
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query pings: %w", err)
	}
	defer rows.Close()

	var pings []Ping
	for rows.Next() {
		var p Ping
		var createdAt any
		if err := rows.Scan(&p.ID, &p.Client, &p.Map, &p.Balance, &p.Version, &p.Remote, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		pings = append(pings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return pings, nil
}

// Stats returns per-map session counts, most played first.
func (s *Store) Stats(ctx context.Context) ([]MapStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT map, COUNT(*), MAX(created_at)
		 FROM pings
		 GROUP BY map
		 ORDER BY COUNT(*) DESC, map ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	defer rows.Close()

	var stats []MapStats
	for rows.Next() {
		var m MapStats
		var lastSeen any
		if err := rows.Scan(&m.Map, &m.Sessions, &lastSeen); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.LastSeen = parseTime(lastSeen)
		stats = append(stats, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// Prune deletes pings older than the cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM pings WHERE created_at < ?",
		before.UTC().Format(sqliteTime),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prune pings: %w", err)
	}
	return res.RowsAffected()
}

const sqliteTime = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string values from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(sqliteTime, v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
