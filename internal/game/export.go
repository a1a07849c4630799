package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportResult appends a finished session's transcript and outcome to a text
// file, one block per game.
func ExportResult(settings Settings, result *Result, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rules := RulesFor(settings.Mode, settings.Difficulty)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Flirt Champion - %s / %s (%s)\n", settings.Mode, rules.DisplayName, settings.Language))
	sb.WriteString(fmt.Sprintf("Player: %s\n", settings.PlayerName))
	sb.WriteString(fmt.Sprintf("Ended: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	for _, m := range result.Transcript {
		who := settings.PlayerName
		if m.Sender == SenderAI {
			who = "AI"
		}
		if m.Sender == SenderAI && m.Points > 0 {
			sb.WriteString(fmt.Sprintf("%s: %q (+%d)\n", who, m.Text, m.Points))
		} else {
			sb.WriteString(fmt.Sprintf("%s: %q\n", who, m.Text))
		}
	}

	outcome := "LOST"
	if result.Won {
		outcome = "WON"
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Final score: %d/%d - %s (ended by %s)\n", result.FinalScore, result.TargetScore, outcome, result.Reason))
	if result.Summary != nil {
		sb.WriteString(fmt.Sprintf("Tagline: %s\n", result.Summary.Tagline))
	}
	sb.WriteString("\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
