// Package store persists the generation history. The history is one JSON
// document under a fixed key: Load is best-effort and Save overwrites the
// whole sequence, so any key-value backend could sit behind the same two
// operations.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/akanghida/soalgen/internal/model"

	_ "modernc.org/sqlite"
)

// historyKey is the fixed document name the history is stored under.
const historyKey = "examHistory"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the persisted history, newest first. Missing or unparseable
// data degrades to an empty history; the failure is logged, never surfaced.
func (s *Store) Load() []model.ExamResult {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM documents WHERE name = ?`, historyKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		slog.Warn("failed to read history, starting empty", "error", err)
		return nil
	}

	var history []model.ExamResult
	if err := json.Unmarshal([]byte(payload), &history); err != nil {
		slog.Warn("failed to parse stored history, starting empty", "error", err)
		return nil
	}
	return history
}

// Save serializes the full history and overwrites the stored document.
func (s *Store) Save(history []model.ExamResult) error {
	if history == nil {
		history = []model.ExamResult{}
	}
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO documents (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = ?, updated_at = ?`,
		historyKey, string(payload), time.Now(), string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
