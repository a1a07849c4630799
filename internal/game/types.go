package game

import (
	"time"
)

type Mode string

const (
	ModeRizz  Mode = "rizz"
	ModeRoast Mode = "roast"
)

type Difficulty string

const (
	// rizz difficulties
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// roast intensities
	DifficultyChill     Difficulty = "chill"
	DifficultyGFaad     Difficulty = "g-faad"
	DifficultyGFaadPlus Difficulty = "g-faad-plus"
)

type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHinglish Language = "hinglish"
)

type Mood string

const (
	MoodAnnoyed     Mood = "annoyed"
	MoodUnimpressed Mood = "unimpressed"
	MoodNeutral     Mood = "neutral"
	MoodHappy       Mood = "happy"
	MoodImpressed   Mood = "impressed"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of the append-only chat log.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Points    int       `json:"points,omitempty"`
	Mood      Mood      `json:"mood,omitempty"`
}

// Settings is everything the player chose before the session started.
type Settings struct {
	PlayerName  string     `json:"playerName"`
	Mode        Mode       `json:"mode"`
	Difficulty  Difficulty `json:"difficulty"`
	CharacterID string     `json:"characterId,omitempty"`
	Language    Language   `json:"language"`
}

// Rules are the fixed per-configuration scoring parameters.
type Rules struct {
	TargetScore   int    `json:"targetScore"`
	MaxPerMessage int    `json:"maxPerMessage"`
	DisplayName   string `json:"displayName"`
}

// PlayerRecord is the leaderboard entry emitted at session end.
type PlayerRecord struct {
	Name       string     `json:"name"`
	Score      int        `json:"score"`
	Difficulty Difficulty `json:"difficulty"`
	Mode       Mode       `json:"mode"`
	Timestamp  time.Time  `json:"timestamp"`
}

const (
	MaxMessages = 10
	InitialTime = 180 // seconds
	GraceDelay  = 2 * time.Second
)

var rizzRules = map[Difficulty]Rules{
	DifficultyEasy:   {TargetScore: 25, MaxPerMessage: 4, DisplayName: "Sweet Talker"},
	DifficultyMedium: {TargetScore: 40, MaxPerMessage: 6, DisplayName: "Smooth Operator"},
	DifficultyHard:   {TargetScore: 50, MaxPerMessage: 8, DisplayName: "Heartbreaker"},
}

var roastRules = map[Difficulty]Rules{
	DifficultyChill:     {TargetScore: 20, MaxPerMessage: 5, DisplayName: "Chill"},
	DifficultyGFaad:     {TargetScore: 20, MaxPerMessage: 5, DisplayName: "G-Faad"},
	DifficultyGFaadPlus: {TargetScore: 20, MaxPerMessage: 5, DisplayName: "G-Faad++"},
}

// RulesFor resolves the scoring table for a mode/difficulty pair. Unknown
// rizz difficulties fall back to medium, unknown roast intensities to chill.
func RulesFor(mode Mode, difficulty Difficulty) Rules {
	if mode == ModeRoast {
		if r, ok := roastRules[difficulty]; ok {
			return r
		}
		return roastRules[DifficultyChill]
	}
	if r, ok := rizzRules[difficulty]; ok {
		return r
	}
	return rizzRules[DifficultyMedium]
}

// RoastDifficulties lists the roast intensities in escalation order.
func RoastDifficulties() []Difficulty {
	return []Difficulty{DifficultyChill, DifficultyGFaad, DifficultyGFaadPlus}
}

// Character is one selectable rizz persona.
type Character struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Personality string     `json:"personality"`
	Difficulty  Difficulty `json:"difficulty"`
	Group       string     `json:"group"` // "girl" | "boy"
	Description string     `json:"description"`
}

var characters = []Character{
	{ID: "maya-girl", Name: "Maya", Personality: "Sweet & Bubbly", Difficulty: DifficultyEasy, Group: "girl", Description: "Giggles at your jokes, loves rom-coms, blushes easily"},
	{ID: "alex-girl", Name: "Alexandra", Personality: "Witty & Confident", Difficulty: DifficultyMedium, Group: "girl", Description: "Sharp tongue, appreciates intelligence, loves banter"},
	{ID: "jordan-girl", Name: "Jordan", Personality: "Sarcastic Genius", Difficulty: DifficultyHard, Group: "girl", Description: "Razor-sharp wit, impossibly high standards, literary queen"},
	{ID: "kai-boy", Name: "Kai", Personality: "Gentle & Sweet", Difficulty: DifficultyEasy, Group: "boy", Description: "Warm smile, loves deep talks, genuine romantic"},
	{ID: "alex-boy", Name: "Alexander", Personality: "Cool & Clever", Difficulty: DifficultyMedium, Group: "boy", Description: "Quick wit, pop culture master, challenges you back"},
	{ID: "jordan-boy", Name: "Jordan", Personality: "Mysterious Intellect", Difficulty: DifficultyHard, Group: "boy", Description: "Dark humor, literary references, brutally honest"},
}

// Characters returns the selectable rizz personas.
func Characters() []Character {
	out := make([]Character, len(characters))
	copy(out, characters)
	return out
}

// CharacterByID looks up a persona; ok is false for unknown ids.
func CharacterByID(id string) (Character, bool) {
	for _, c := range characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}
