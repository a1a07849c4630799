package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExportResultAppendsBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "transcripts.txt")
	settings := Settings{
		PlayerName: "Alice", Mode: ModeRizz,
		Difficulty: DifficultyEasy, Language: LanguageEnglish,
	}
	result := &Result{
		FinalScore:  26,
		TargetScore: 25,
		Won:         true,
		Reason:      ReasonTarget,
		Summary:     &GameSummary{Tagline: "Charm Champion"},
		Transcript: []Message{
			{Text: "Hey! I'm Maya.", Sender: SenderAI, Timestamp: time.Now()},
			{Text: "hi Maya, love your energy", Sender: SenderUser, Timestamp: time.Now()},
			{Text: "Aww, you're sweet!", Sender: SenderAI, Timestamp: time.Now(), Points: 3},
		},
	}

	if err := ExportResult(settings, result, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := ExportResult(settings, result, path); err != nil {
		t.Fatalf("second export: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(b)

	if got := strings.Count(content, "Player: Alice"); got != 2 {
		t.Fatalf("expected 2 appended blocks, found %d", got)
	}
	if !strings.Contains(content, `Alice: "hi Maya, love your energy"`) {
		t.Fatal("user lines should carry the player name")
	}
	if !strings.Contains(content, `AI: "Aww, you're sweet!" (+3)`) {
		t.Fatal("scored AI lines should show the points")
	}
	if !strings.Contains(content, "Final score: 26/25 - WON (ended by target)") {
		t.Fatal("outcome line missing")
	}
	if !strings.Contains(content, "Tagline: Charm Champion") {
		t.Fatal("summary tagline missing")
	}
}
