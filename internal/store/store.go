// Package store holds the persistence ports for the credential and the
// per-mode leaderboards, plus the SQLite and in-memory implementations.
package store

import (
	"errors"

	"github.com/flirtchampion/backend/internal/game"
)

var ErrNoCredential = errors.New("no credential stored")

// MaxEntries caps each mode's leaderboard; every write re-sorts descending by
// score and truncates to this.
const MaxEntries = 10

// CredentialStore persists the single opaque API credential.
type CredentialStore interface {
	Credential() (string, error)
	SaveCredential(key string) error
	DeleteCredential() error
}

// LeaderboardStore persists finished sessions keyed by game mode.
type LeaderboardStore interface {
	Append(record game.PlayerRecord) error
	List(mode game.Mode) ([]game.PlayerRecord, error)
	Clear(mode game.Mode) error
}
