package game

import (
	"context"
	"fmt"
)

// StartSentinel is the synthetic user message that requests the opening
// greeting. It is never appended to the log.
const StartSentinel = "START_GAME"

// ChatMessage is a transcript entry in the role/content shape the remote
// generator consumes.
type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// TurnRequest asks the generator for the persona's reply to one user message.
type TurnRequest struct {
	UserMessage string
	History     []ChatMessage
	Settings    Settings
	Rules       Rules
}

// TurnResult is the generator's parsed reply. Score is untrusted and gets
// clamped by the session before it touches the running total.
type TurnResult struct {
	Response        string
	Score           int
	Reasoning       string
	MoodExplanation string
}

// SummaryRequest asks the summarizer for the end-of-game narrative.
type SummaryRequest struct {
	PlayerName  string
	FinalScore  int
	TargetScore int
	Difficulty  Difficulty
	Transcript  []ChatMessage
}

// GameSummary is the short narrative attached to a finished session.
type GameSummary struct {
	Tagline     string `json:"tagline"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator produces persona replies and scores. It is a non-deterministic,
// possibly-failing remote collaborator.
type Generator interface {
	Probe(ctx context.Context) error
	GenerateTurn(ctx context.Context, req TurnRequest) (*TurnResult, error)
}

// Summarizer produces the end-of-game narrative.
type Summarizer interface {
	SummarizeGame(ctx context.Context, req SummaryRequest) (*GameSummary, error)
}

// FallbackSummary is the deterministic substitute used when the remote
// summarizer fails. Keyed only by win/lose.
func FallbackSummary(playerName string, finalScore, targetScore int) *GameSummary {
	if finalScore >= targetScore {
		return &GameSummary{
			Tagline: "Charm Champion",
			Title:   "Victory! You've Got Game!",
			Description: fmt.Sprintf("Congratulations %s! You scored %d points and successfully charmed your way to victory. Your wit and charm were on point!",
				playerName, finalScore),
		}
	}
	return &GameSummary{
		Tagline: "Almost Had It",
		Title:   "Game Over - So Close!",
		Description: fmt.Sprintf("Nice try %s! You scored %d/%d points. Your conversation skills are developing - keep practicing that charm!",
			playerName, finalScore, targetScore),
	}
}
