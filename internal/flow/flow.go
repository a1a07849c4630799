// Package flow drives one player's navigation through the game: mode select,
// setup, session, results. It owns the guards for starting a session and the
// handoff of finished games to the leaderboard.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/flirtchampion/backend/internal/game"
	"github.com/flirtchampion/backend/internal/store"
)

type Screen string

const (
	ScreenModeSelect      Screen = "ModeSelect"
	ScreenCharacterSelect Screen = "CharacterSelect"
	ScreenRoastSetup      Screen = "RoastSetup"
	ScreenSession         Screen = "Session"
	ScreenResults         Screen = "Results"
)

var (
	ErrWrongScreen        = errors.New("action not available on this screen")
	ErrUnknownMode        = errors.New("unknown game mode")
	ErrNameRequired       = errors.New("player name required")
	ErrSelectionRequired  = errors.New("character or difficulty selection required")
	ErrCredentialRequired = errors.New("API credential required")
	ErrCredentialInvalid  = errors.New("credential could not be verified")
)

// Factory builds the remote collaborators for a resolved credential.
type Factory func(apiKey string) (game.Generator, game.Summarizer)

// StartRequest is the setup screen's submission.
type StartRequest struct {
	PlayerName  string          `json:"playerName"`
	Difficulty  game.Difficulty `json:"difficulty"`
	CharacterID string          `json:"characterId"`
	Language    game.Language   `json:"language"`
	APIKey      string          `json:"apiKey"`
}

// Flow is one player's screen state machine.
type Flow struct {
	creds   store.CredentialStore
	boards  store.LeaderboardStore
	factory Factory

	mu       sync.Mutex
	screen   Screen
	mode     game.Mode
	settings game.Settings
	apiKey   string
	session  *game.Session
	result   *game.Result
}

func New(creds store.CredentialStore, boards store.LeaderboardStore, factory Factory) *Flow {
	return &Flow{
		creds:   creds,
		boards:  boards,
		factory: factory,
		screen:  ScreenModeSelect,
	}
}

func (f *Flow) Screen() Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

func (f *Flow) Session() *game.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *Flow) Result() *game.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// SelectMode leaves the main menu for the chosen setup screen.
func (f *Flow) SelectMode(mode game.Mode) (Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.screen != ScreenModeSelect {
		return f.screen, ErrWrongScreen
	}
	switch mode {
	case game.ModeRizz:
		f.mode = mode
		f.screen = ScreenCharacterSelect
	case game.ModeRoast:
		f.mode = mode
		f.screen = ScreenRoastSetup
	default:
		return f.screen, ErrUnknownMode
	}
	return f.screen, nil
}

// Back returns to the main menu, discarding in-progress selections. From the
// session screen it abandons the running game.
func (f *Flow) Back() Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		f.session.Abandon()
	}
	f.resetLocked()
	return f.screen
}

func (f *Flow) resetLocked() {
	f.screen = ScreenModeSelect
	f.mode = ""
	f.settings = game.Settings{}
	f.session = nil
	f.result = nil
}

// StartGame checks the setup guards, resolves and verifies the credential,
// and constructs a fresh session. The caller starts it.
func (f *Flow) StartGame(ctx context.Context, req StartRequest) (*game.Session, error) {
	f.mu.Lock()
	if f.screen != ScreenCharacterSelect && f.screen != ScreenRoastSetup {
		f.mu.Unlock()
		return nil, ErrWrongScreen
	}
	mode := f.mode
	f.mu.Unlock()

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, ErrNameRequired
	}

	settings := game.Settings{
		PlayerName: name,
		Mode:       mode,
		Language:   req.Language,
	}
	if settings.Language == "" {
		settings.Language = game.LanguageEnglish
	}

	if mode == game.ModeRizz {
		character, ok := game.CharacterByID(req.CharacterID)
		if !ok {
			return nil, ErrSelectionRequired
		}
		settings.CharacterID = character.ID
		settings.Difficulty = character.Difficulty
	} else {
		switch req.Difficulty {
		case game.DifficultyChill, game.DifficultyGFaad, game.DifficultyGFaadPlus:
			settings.Difficulty = req.Difficulty
		default:
			return nil, ErrSelectionRequired
		}
	}

	apiKey, err := f.resolveCredential(ctx, strings.TrimSpace(req.APIKey))
	if err != nil {
		return nil, err
	}

	gen, summ := f.factory(apiKey)
	session := game.NewSession(settings, gen, summ)

	f.mu.Lock()
	f.settings = settings
	f.apiKey = apiKey
	f.session = session
	f.result = nil
	f.screen = ScreenSession
	f.mu.Unlock()
	return session, nil
}

// resolveCredential prefers an explicitly entered key over the persisted one.
// A fresh key must pass a live probe before it is accepted and persisted; a
// failed probe blocks the start and leaves the store untouched.
func (f *Flow) resolveCredential(ctx context.Context, entered string) (string, error) {
	if entered != "" {
		gen, _ := f.factory(entered)
		if err := gen.Probe(ctx); err != nil {
			return "", ErrCredentialInvalid
		}
		if err := f.creds.SaveCredential(entered); err != nil {
			return "", err
		}
		return entered, nil
	}
	saved, err := f.creds.Credential()
	if err != nil {
		return "", ErrCredentialRequired
	}
	return saved, nil
}

// GameOver records the finished session's result, appends the leaderboard
// entry and moves to the results screen.
func (f *Flow) GameOver(result *game.Result) error {
	f.mu.Lock()
	if f.screen != ScreenSession {
		f.mu.Unlock()
		return ErrWrongScreen
	}
	f.result = result
	f.screen = ScreenResults
	f.mu.Unlock()
	return f.boards.Append(result.Record)
}

// Replay starts a fresh session with the same settings. Nothing carries over
// from the previous game.
func (f *Flow) Replay() (*game.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.screen != ScreenResults {
		return nil, ErrWrongScreen
	}
	gen, summ := f.factory(f.apiKey)
	session := game.NewSession(f.settings, gen, summ)
	f.session = session
	f.result = nil
	f.screen = ScreenSession
	return session, nil
}

// MainMenu returns to mode selection from the results screen, clearing all
// session state.
func (f *Flow) MainMenu() (Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.screen != ScreenResults {
		return f.screen, ErrWrongScreen
	}
	f.resetLocked()
	return f.screen, nil
}
