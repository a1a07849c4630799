package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flirtchampion/backend/internal/game"
)

// SQLite backs both ports with a single database file.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createCredentialTable := `
	CREATE TABLE IF NOT EXISTS credential (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		api_key TEXT NOT NULL
	);`

	createLeaderboardTable := `
	CREATE TABLE IF NOT EXISTS leaderboard (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		mode TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`

	if _, err := db.Exec(createCredentialTable); err != nil {
		return nil, fmt.Errorf("failed to create credential table: %w", err)
	}
	if _, err := db.Exec(createLeaderboardTable); err != nil {
		return nil, fmt.Errorf("failed to create leaderboard table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Credential() (string, error) {
	var key string
	err := s.db.QueryRow(`SELECT api_key FROM credential WHERE id = 1`).Scan(&key)
	if err == sql.ErrNoRows {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return key, nil
}

func (s *SQLite) SaveCredential(key string) error {
	_, err := s.db.Exec(`INSERT INTO credential (id, api_key) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET api_key = excluded.api_key`, key)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteCredential() error {
	if _, err := s.db.Exec(`DELETE FROM credential WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *SQLite) Append(record game.PlayerRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO leaderboard (name, score, difficulty, mode, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.Name, record.Score, string(record.Difficulty), string(record.Mode), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	// keep only the top entries for this mode
	_, err = tx.Exec(`DELETE FROM leaderboard WHERE mode = ? AND id NOT IN (
		SELECT id FROM leaderboard WHERE mode = ? ORDER BY score DESC, created_at ASC LIMIT ?
	)`, string(record.Mode), string(record.Mode), MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim leaderboard: %w", err)
	}

	return tx.Commit()
}

func (s *SQLite) List(mode game.Mode) ([]game.PlayerRecord, error) {
	rows, err := s.db.Query(`SELECT name, score, difficulty, mode, created_at FROM leaderboard
		WHERE mode = ? ORDER BY score DESC, created_at ASC LIMIT ?`, string(mode), MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	defer rows.Close()

	var out []game.PlayerRecord
	for rows.Next() {
		var r game.PlayerRecord
		var difficulty, m string
		if err := rows.Scan(&r.Name, &r.Score, &difficulty, &m, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Difficulty = game.Difficulty(difficulty)
		r.Mode = game.Mode(m)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Clear(mode game.Mode) error {
	if _, err := s.db.Exec(`DELETE FROM leaderboard WHERE mode = ?`, string(mode)); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	return nil
}
