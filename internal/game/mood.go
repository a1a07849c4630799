package game

// ClampScore bounds an untrusted per-message score from the remote judge.
// A real exchange is never worth less than 1 point and never more than the
// configuration's per-message ceiling.
func ClampScore(score int, rules Rules) int {
	if score < 1 {
		return 1
	}
	if score > rules.MaxPerMessage {
		return rules.MaxPerMessage
	}
	return score
}

// MoodFromScore derives the persona's mood from the last clamped score.
// Roast mode ignores the score entirely; the antagonist stays hostile.
func MoodFromScore(mode Mode, score int, rules Rules) Mood {
	if mode == ModeRoast {
		return MoodAnnoyed
	}
	ratio := float64(score) / float64(rules.MaxPerMessage)
	switch {
	case ratio >= 0.8:
		return MoodImpressed
	case ratio >= 0.6:
		return MoodHappy
	case ratio >= 0.4:
		return MoodNeutral
	case ratio >= 0.2:
		return MoodUnimpressed
	default:
		return MoodAnnoyed
	}
}
