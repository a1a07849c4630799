package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flirtchampion/backend/internal/game"
	"github.com/flirtchampion/backend/internal/store"
)

type fakeRemote struct {
	probeErr error
}

func (f *fakeRemote) Probe(ctx context.Context) error { return f.probeErr }

func (f *fakeRemote) GenerateTurn(ctx context.Context, req game.TurnRequest) (*game.TurnResult, error) {
	return &game.TurnResult{Response: "hi", Score: 1}, nil
}

func (f *fakeRemote) SummarizeGame(ctx context.Context, req game.SummaryRequest) (*game.GameSummary, error) {
	return &game.GameSummary{Tagline: "t", Title: "t", Description: "d"}, nil
}

func okFactory() Factory {
	return func(apiKey string) (game.Generator, game.Summarizer) {
		r := &fakeRemote{}
		return r, r
	}
}

func failingProbeFactory() Factory {
	return func(apiKey string) (game.Generator, game.Summarizer) {
		r := &fakeRemote{probeErr: errors.New("401")}
		return r, r
	}
}

func rizzStart() StartRequest {
	return StartRequest{PlayerName: "Alice", CharacterID: "maya-girl"}
}

func TestSelectModeTransitions(t *testing.T) {
	f := New(store.NewMemory(), store.NewMemory(), okFactory())
	if f.Screen() != ScreenModeSelect {
		t.Fatalf("fresh flow should start on %s, got %s", ScreenModeSelect, f.Screen())
	}

	screen, err := f.SelectMode(game.ModeRizz)
	if err != nil {
		t.Fatalf("select rizz: %v", err)
	}
	if screen != ScreenCharacterSelect {
		t.Fatalf("rizz should go to %s, got %s", ScreenCharacterSelect, screen)
	}
	if _, err := f.SelectMode(game.ModeRoast); err != ErrWrongScreen {
		t.Fatalf("selecting again off the menu should fail, got %v", err)
	}

	f.Back()
	screen, err = f.SelectMode(game.ModeRoast)
	if err != nil {
		t.Fatalf("select roast: %v", err)
	}
	if screen != ScreenRoastSetup {
		t.Fatalf("roast should go to %s, got %s", ScreenRoastSetup, screen)
	}

	f.Back()
	if _, err := f.SelectMode(game.Mode("bogus")); err != ErrUnknownMode {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestStartGameGuards(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	f := New(creds, store.NewMemory(), okFactory())

	if _, err := f.StartGame(context.Background(), rizzStart()); err != ErrWrongScreen {
		t.Fatalf("start from menu should fail, got %v", err)
	}

	if _, err := f.SelectMode(game.ModeRizz); err != nil {
		t.Fatalf("select mode: %v", err)
	}

	req := rizzStart()
	req.PlayerName = "   "
	if _, err := f.StartGame(context.Background(), req); err != ErrNameRequired {
		t.Fatalf("blank name should fail, got %v", err)
	}

	req = rizzStart()
	req.CharacterID = "nobody"
	if _, err := f.StartGame(context.Background(), req); err != ErrSelectionRequired {
		t.Fatalf("unknown character should fail, got %v", err)
	}

	session, err := f.StartGame(context.Background(), rizzStart())
	if err != nil {
		t.Fatalf("valid start: %v", err)
	}
	if session == nil {
		t.Fatal("expected a session")
	}
	if f.Screen() != ScreenSession {
		t.Fatalf("expected %s, got %s", ScreenSession, f.Screen())
	}
}

func TestStartGameDerivesRizzDifficultyFromCharacter(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	f := New(creds, store.NewMemory(), okFactory())
	if _, err := f.SelectMode(game.ModeRizz); err != nil {
		t.Fatalf("select mode: %v", err)
	}

	req := rizzStart()
	req.CharacterID = "jordan-boy"
	req.Difficulty = game.DifficultyEasy // ignored; the character decides
	if _, err := f.StartGame(context.Background(), req); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.mu.Lock()
	got := f.settings
	f.mu.Unlock()
	if got.Difficulty != game.DifficultyHard {
		t.Fatalf("jordan-boy should play hard, got %s", got.Difficulty)
	}
	if got.Language != game.LanguageEnglish {
		t.Fatalf("language should default to english, got %s", got.Language)
	}
}

func TestStartGameRoastDifficultyWhitelist(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	f := New(creds, store.NewMemory(), okFactory())
	if _, err := f.SelectMode(game.ModeRoast); err != nil {
		t.Fatalf("select mode: %v", err)
	}

	req := StartRequest{PlayerName: "Bob", Difficulty: game.DifficultyEasy}
	if _, err := f.StartGame(context.Background(), req); err != ErrSelectionRequired {
		t.Fatalf("rizz difficulty in roast mode should fail, got %v", err)
	}

	req.Difficulty = game.DifficultyGFaad
	if _, err := f.StartGame(context.Background(), req); err != nil {
		t.Fatalf("valid roast start: %v", err)
	}
}

func TestCredentialResolution(t *testing.T) {
	t.Run("no key anywhere", func(t *testing.T) {
		f := New(store.NewMemory(), store.NewMemory(), okFactory())
		if _, err := f.SelectMode(game.ModeRizz); err != nil {
			t.Fatalf("select mode: %v", err)
		}
		if _, err := f.StartGame(context.Background(), rizzStart()); err != ErrCredentialRequired {
			t.Fatalf("expected ErrCredentialRequired, got %v", err)
		}
	})

	t.Run("entered key is probed and persisted", func(t *testing.T) {
		creds := store.NewMemory()
		f := New(creds, store.NewMemory(), okFactory())
		if _, err := f.SelectMode(game.ModeRizz); err != nil {
			t.Fatalf("select mode: %v", err)
		}
		req := rizzStart()
		req.APIKey = "  fresh-key  "
		if _, err := f.StartGame(context.Background(), req); err != nil {
			t.Fatalf("start: %v", err)
		}
		saved, err := creds.Credential()
		if err != nil {
			t.Fatalf("key should be persisted: %v", err)
		}
		if saved != "fresh-key" {
			t.Fatalf("expected trimmed key persisted, got %q", saved)
		}
	})

	t.Run("failed probe blocks start and persists nothing", func(t *testing.T) {
		creds := store.NewMemory()
		f := New(creds, store.NewMemory(), failingProbeFactory())
		if _, err := f.SelectMode(game.ModeRizz); err != nil {
			t.Fatalf("select mode: %v", err)
		}
		req := rizzStart()
		req.APIKey = "bad-key"
		if _, err := f.StartGame(context.Background(), req); err != ErrCredentialInvalid {
			t.Fatalf("expected ErrCredentialInvalid, got %v", err)
		}
		if _, err := creds.Credential(); err != store.ErrNoCredential {
			t.Fatalf("invalid key must not be persisted, got %v", err)
		}
		if f.Screen() != ScreenCharacterSelect {
			t.Fatalf("flow should stay on the setup screen, got %s", f.Screen())
		}
	})
}

func TestGameOverAppendsRecordAndShowsResults(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	boards := store.NewMemory()
	f := New(creds, boards, okFactory())
	if _, err := f.SelectMode(game.ModeRizz); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	if _, err := f.StartGame(context.Background(), rizzStart()); err != nil {
		t.Fatalf("start: %v", err)
	}

	result := &game.Result{
		FinalScore: 27,
		Won:        true,
		Record: game.PlayerRecord{
			Name: "Alice", Score: 27, Difficulty: game.DifficultyEasy,
			Mode: game.ModeRizz, Timestamp: time.Now(),
		},
	}
	if err := f.GameOver(result); err != nil {
		t.Fatalf("game over: %v", err)
	}
	if f.Screen() != ScreenResults {
		t.Fatalf("expected %s, got %s", ScreenResults, f.Screen())
	}
	if f.Result() != result {
		t.Fatal("result should be retrievable")
	}
	entries, err := boards.List(game.ModeRizz)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Score != 27 {
		t.Fatalf("expected the record on the board, got %+v", entries)
	}

	if err := f.GameOver(result); err != ErrWrongScreen {
		t.Fatalf("second game over should fail, got %v", err)
	}
}

func TestReplayBuildsFreshSession(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	f := New(creds, store.NewMemory(), okFactory())

	if _, err := f.Replay(); err != ErrWrongScreen {
		t.Fatalf("replay off the results screen should fail, got %v", err)
	}

	if _, err := f.SelectMode(game.ModeRizz); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	first, err := f.StartGame(context.Background(), rizzStart())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.GameOver(&game.Result{Record: game.PlayerRecord{Mode: game.ModeRizz}}); err != nil {
		t.Fatalf("game over: %v", err)
	}

	second, err := f.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if second == first {
		t.Fatal("replay must build a brand-new session")
	}
	if f.Screen() != ScreenSession {
		t.Fatalf("expected %s, got %s", ScreenSession, f.Screen())
	}
	if f.Result() != nil {
		t.Fatal("previous result should be cleared on replay")
	}
}

func TestMainMenuResets(t *testing.T) {
	creds := store.NewMemory()
	_ = creds.SaveCredential("stored-key")
	f := New(creds, store.NewMemory(), okFactory())

	if _, err := f.MainMenu(); err != ErrWrongScreen {
		t.Fatalf("main menu off the results screen should fail, got %v", err)
	}

	if _, err := f.SelectMode(game.ModeRoast); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	req := StartRequest{PlayerName: "Bob", Difficulty: game.DifficultyChill}
	if _, err := f.StartGame(context.Background(), req); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.GameOver(&game.Result{Record: game.PlayerRecord{Mode: game.ModeRoast}}); err != nil {
		t.Fatalf("game over: %v", err)
	}

	screen, err := f.MainMenu()
	if err != nil {
		t.Fatalf("main menu: %v", err)
	}
	if screen != ScreenModeSelect {
		t.Fatalf("expected %s, got %s", ScreenModeSelect, screen)
	}
	if f.Session() != nil || f.Result() != nil {
		t.Fatal("session state should be cleared")
	}
}
