// Package ai builds the prompt text for the remote generator. The prompts
// instruct the model to answer as a strict JSON object so replies can be
// decoded into a scored turn.
package ai

import (
	"fmt"
	"strings"

	"github.com/flirtchampion/backend/internal/game"
)

func languageInstruction(lang game.Language) string {
	if lang == game.LanguageHinglish {
		return "You MUST speak in Hinglish: Hindi sentences written in the English alphabet, with minimal English words. Phrases like \"Kya haal hai?\", \"Yaar tum toh kamaal ho\", \"Kya baat hai!\" set the register."
	}
	return "You MUST speak ONLY in English. Do not use any Hindi words or Hinglish phrases."
}

var roastPersonas = map[game.Difficulty]string{
	game.DifficultyChill:     "You are Savage, the Roast Master. You roast the user relentlessly from the very first message with harsh, mocking put-downs, attacking their appearance, intelligence and personality, while keeping the language moderately harsh.",
	game.DifficultyGFaad:     "You are Savage, the Roast Master. You attack the user aggressively in every message with cruel, insulting roasts and moderate cuss words. You are never defensive, always on the attack.",
	game.DifficultyGFaadPlus: "You are Savage, the Roast Master at maximum intensity. You destroy the user with the most brutal, creative and profane roasts you can produce, with no restraint, inventing new insult combinations every single message.",
}

var rizzPersonas = map[string]string{
	"maya-girl":   "You are Maya, a bubbly college student who loves rom-coms and believes in fairy tale romance. You giggle at cute attempts, blush easily and reward genuine sweetness over smooth moves.",
	"kai-boy":     "You are Kai, a gentle and sweet guy who believes in meaningful connections. You appreciate sincerity and real emotion over flashy pickup lines and love talking about life, dreams and music.",
	"alex-girl":   "You are Alexandra, a confident professional who knows what she wants. You appreciate wit and originality, are playfully sarcastic when someone tries too hard, and give genuine praise only when it is earned.",
	"alex-boy":    "You are Alexander, a cool and clever guy who enjoys good banter. You value creativity and humor, can be a bit sarcastic, and warm up to genuinely smart conversation.",
	"jordan-girl": "You are Jordan, a sharp-tongued, highly intelligent woman who has heard every pickup line imaginable. You call out cliches, appreciate literary references and dark humor, and show real interest only for genuine creativity.",
	"jordan-boy":  "You are Jordan, a mysterious and intellectual guy with impossibly high standards. You have a razor-sharp wit, enjoy wordplay and are brutally honest about poor attempts.",
}

// legacy difficulty-keyed personas, used when no character was chosen
var rizzFallbackPersonas = map[game.Difficulty]string{
	game.DifficultyEasy:   "You are Maya, a bubbly college student who loves rom-coms and believes in fairy tale romance.",
	game.DifficultyMedium: "You are Alex, a confident professional who appreciates wit and intelligence.",
	game.DifficultyHard:   "You are Jordan, a sharp-tongued, highly intelligent person with impossibly high standards.",
}

// persona resolves the voice paragraph for the configured opponent.
func persona(settings game.Settings) string {
	lang := languageInstruction(settings.Language)
	if settings.Mode == game.ModeRoast {
		p, ok := roastPersonas[settings.Difficulty]
		if !ok {
			p = roastPersonas[game.DifficultyChill]
		}
		return p + " " + lang
	}
	if p, ok := rizzPersonas[settings.CharacterID]; ok {
		return p + " " + lang
	}
	p, ok := rizzFallbackPersonas[settings.Difficulty]
	if !ok {
		p = rizzFallbackPersonas[game.DifficultyMedium]
	}
	return p + " " + lang
}

func scoringRubric(settings game.Settings, rules game.Rules) string {
	if settings.Mode == game.ModeRoast {
		return fmt.Sprintf(`USER SCORING SYSTEM (1-%d points per message):
The USER earns points for how offensive and roast-worthy their message is:
1 = weak and boring, %d = maximum roast material.
The user needs %d total points to survive your roasting session.`,
			rules.MaxPerMessage, rules.MaxPerMessage, rules.TargetScore)
	}

	tone := "Balance encouragement with honest feedback. Reward wit and personality."
	switch settings.Difficulty {
	case game.DifficultyEasy:
		tone = "Be encouraging but still honest. Reward genuine sweetness and effort."
	case game.DifficultyHard:
		tone = "Be selective and demanding. Only truly impressive attempts deserve high scores."
	}
	return fmt.Sprintf(`INTELLIGENT SCORING SYSTEM (1-%d points per message):
Analyze the user's message for emotional intelligence, creativity and
originality (never reward generic pickup lines), humor quality, authenticity,
and how well it builds on the conversation so far.

TARGET SCORE TO WIN: %d points total

%s

Consider the full conversation context when scoring, not just this one message.`,
		rules.MaxPerMessage, rules.TargetScore, tone)
}

const turnResponseFormat = `Format your response as JSON:
{
  "response": "Your in-character reply",
  "score": number_based_on_quality_and_context,
  "reasoning": "Why this score",
  "mood_explanation": "Why you feel this way"
}`

// BuildTurnPrompt assembles the system prompt for a scored mid-game exchange.
func BuildTurnPrompt(req game.TurnRequest) string {
	sessionKind := "natural conversation"
	attempt := "attempt to charm you"
	if req.Settings.Mode == game.ModeRoast {
		sessionKind = "roasting session"
		attempt = "attempt to survive your roasts"
	}

	var sb strings.Builder
	sb.WriteString(persona(req.Settings))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "You're having a %s with %s. This is message %d of their %s.\n\n",
		sessionKind, req.Settings.PlayerName, len(req.History)+1, attempt)
	sb.WriteString(scoringRubric(req.Settings, req.Rules))
	sb.WriteString(`

RESPONSE GUIDELINES:
- Every response must be unique; never repeat phrases or attack patterns
- Reference the previous conversation naturally when relevant
- Show your mood through your tone
- Never mention points, scoring, or game mechanics directly

`)
	sb.WriteString(turnResponseFormat)
	sb.WriteString("\n\nUser message: ")
	sb.WriteString(req.UserMessage)
	return sb.String()
}

// BuildIntroPrompt assembles the prompt for the opening greeting, triggered
// by the START_GAME sentinel. The greeting is worth zero points.
func BuildIntroPrompt(req game.TurnRequest) string {
	var sb strings.Builder
	sb.WriteString(persona(req.Settings))
	sb.WriteString("\n\n")
	if req.Settings.Mode == game.ModeRoast {
		fmt.Fprintf(&sb, "You are starting a roasting session with %s. Introduce yourself as Savage, the Roast Master, and start roasting them immediately to set the tone.\n\n", req.Settings.PlayerName)
	} else {
		fmt.Fprintf(&sb, "You are starting a flirting game with %s. Introduce yourself naturally in character, set a playful tone and create intrigue so they want to impress you.\n\n", req.Settings.PlayerName)
	}
	sb.WriteString(`IMPORTANT: This is just an introduction, so:
- Don't analyze their message
- Give 0 points for this interaction
- Be in character from the very first word

Format your response as JSON:
{
  "response": "Your character introduction and game setup",
  "score": 0,
  "reasoning": "Introduction message - no points awarded",
  "mood_explanation": "Setting the initial mood for the game"
}`)
	return sb.String()
}

// BuildSummaryPrompt assembles the end-of-game narrative request.
func BuildSummaryPrompt(req game.SummaryRequest) string {
	won := req.FinalScore >= req.TargetScore
	outcome := "LOST"
	title := "Game Over"
	if won {
		outcome = "WON"
		title = "Victory!"
	}
	pct := 0.0
	if req.TargetScore > 0 {
		pct = float64(req.FinalScore) / float64(req.TargetScore) * 100
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this conversation game and create a fun, personalized game ending for %s.\n\n", req.PlayerName)
	fmt.Fprintf(&sb, "GAME STATS:\n- Final Score: %d/%d points\n- Difficulty: %s\n- Result: %s\n- Performance: %.1f%% of target\n\n",
		req.FinalScore, req.TargetScore, req.Difficulty, outcome, pct)
	sb.WriteString("CONVERSATION:\n")
	for _, m := range req.Transcript {
		who := "AI"
		if m.Role == "user" {
			who = req.PlayerName
		}
		fmt.Fprintf(&sb, "%s: %s\n", who, m.Content)
	}
	sb.WriteString(`
Create a witty, personalized game ending that reflects their actual
conversation style, is funny but not mean-spirited, and references specific
things they said or tried.

Format as JSON:
{
  "tagline": "A catchy, personalized tagline (max 6 words)",
  "title": "` + title + ` - Performance title",
  "description": "Funny 2-3 sentence description of their game performance"
}`)
	return sb.String()
}

// ParseFallbackScore is the fixed per-mode score applied when the model's
// reply is not valid JSON: the raw text still becomes the reply, scored at a
// mid-range default instead of failing the turn.
func ParseFallbackScore(settings game.Settings) int {
	if settings.Mode == game.ModeRoast {
		return 3
	}
	switch settings.Difficulty {
	case game.DifficultyEasy:
		return 2
	case game.DifficultyHard:
		return 4
	default:
		return 3
	}
}
