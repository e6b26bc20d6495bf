package prefs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Storage keys. Absence of either implies defaults.
const (
	keyPreferences = "preferences"
	keyTheme       = "theme"
)

// Store persists preferences in a small SQLite key/value table.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "voznota", "voznota.sqlite")
}

// Open opens (creating if needed) the preferences database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// Load returns the stored preferences merged over defaults, so blobs written
// by older versions simply lack the newer keys.
func (s *Store) Load() (Prefs, error) {
	p := Defaults()
	raw, ok, err := s.get(keyPreferences)
	if err != nil {
		return p, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			// A corrupt blob falls back to defaults rather than wedging
			// startup.
			p = Defaults()
		}
	}
	p.Normalize()
	return p, nil
}

// Save persists the preferences object.
func (s *Store) Save(p Prefs) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return s.put(keyPreferences, string(raw))
}

// Theme returns the stored theme flag, defaulting to dark.
func (s *Store) Theme() string {
	raw, ok, err := s.get(keyTheme)
	if err != nil || !ok {
		return "dark"
	}
	return raw
}

// SaveTheme persists the theme flag.
func (s *Store) SaveTheme(theme string) error {
	return s.put(keyTheme, theme)
}
