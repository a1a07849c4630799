package store

import (
	"sort"
	"sync"

	"github.com/flirtchampion/backend/internal/game"
)

// Memory keeps everything in process. Used in tests and when no database
// path is configured.
type Memory struct {
	mu         sync.Mutex
	credential string
	hasKey     bool
	boards     map[game.Mode][]game.PlayerRecord
}

func NewMemory() *Memory {
	return &Memory{boards: make(map[game.Mode][]game.PlayerRecord)}
}

func (m *Memory) Credential() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasKey {
		return "", ErrNoCredential
	}
	return m.credential, nil
}

func (m *Memory) SaveCredential(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = key
	m.hasKey = true
	return nil
}

func (m *Memory) DeleteCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = ""
	m.hasKey = false
	return nil
}

func (m *Memory) Append(record game.PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.boards[record.Mode], record)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	m.boards[record.Mode] = list
	return nil
}

func (m *Memory) List(mode game.Mode) ([]game.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.PlayerRecord, len(m.boards[mode]))
	copy(out, m.boards[mode])
	return out, nil
}

func (m *Memory) Clear(mode game.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boards, mode)
	return nil
}
