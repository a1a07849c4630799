package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrRequestInFlight = errors.New("request already in flight")
	ErrSessionOver     = errors.New("session over")
	ErrNotInitializing = errors.New("session already started")
	ErrConnection      = errors.New("connectivity probe failed")
)

type State string

const (
	StateInitializing    State = "Initializing"
	StateActive          State = "Active"
	StateEnding          State = "Ending"
	StateEnded           State = "Ended"
	StateConnectionError State = "ConnectionError"
)

type EndReason string

const (
	ReasonTarget   EndReason = "target"
	ReasonMessages EndReason = "messages"
	ReasonTimeout  EndReason = "timeout"
)

// FallbackReply is appended in place of the persona's reply when a
// generation call fails mid-session.
const FallbackReply = "Sorry, I'm having trouble thinking of a response right now. Let's try again!"

// Turn is what Send reports back for one completed exchange.
type Turn struct {
	Message   Message `json:"message"`
	Score     int     `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
	Fallback  bool    `json:"fallback"`
	Notice    string  `json:"notice,omitempty"`
}

// Result is the terminal outcome of a session.
type Result struct {
	FinalScore  int          `json:"finalScore"`
	TargetScore int          `json:"targetScore"`
	Won         bool         `json:"won"`
	Reason      EndReason    `json:"reason"`
	Summary     *GameSummary `json:"summary,omitempty"`
	Record      PlayerRecord `json:"record"`
	Transcript  []Message    `json:"transcript"`
}

// Session is the state machine for one game: the append-only message log,
// the running score, the countdown and the win/lose/timeout detection.
// All mutation happens under mu; the remote calls happen outside it.
type Session struct {
	ID       string
	Settings Settings
	Rules    Rules

	gen  Generator
	summ Summarizer

	// Invoked after state settles, never under mu.
	OnTick func(secondsLeft int)
	OnEnd  func(*Result)

	mu           sync.Mutex
	state        State
	messages     []Message
	score        int
	messageCount int
	timeLeft     int
	mood         Mood
	pending      bool
	ended        bool // end sequence has run (or is running); checked-and-set once
	result       *Result
	stopTick     chan struct{}

	graceDelay   time.Duration
	tickInterval time.Duration
}

func NewSession(settings Settings, gen Generator, summ Summarizer) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Settings:     settings,
		Rules:        RulesFor(settings.Mode, settings.Difficulty),
		gen:          gen,
		summ:         summ,
		state:        StateInitializing,
		timeLeft:     InitialTime,
		mood:         MoodNeutral,
		graceDelay:   GraceDelay,
		tickInterval: time.Second,
	}
}

// Start probes connectivity, requests the opening greeting and begins the
// countdown. A probe or greeting failure leaves the session in
// ConnectionError: no timer runs and no messages are accepted.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return ErrNotInitializing
	}
	s.mu.Unlock()

	if err := s.gen.Probe(ctx); err != nil {
		s.fail()
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	res, err := s.gen.GenerateTurn(ctx, TurnRequest{
		UserMessage: StartSentinel,
		Settings:    s.Settings,
		Rules:       s.Rules,
	})
	if err != nil {
		s.fail()
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	mood := MoodNeutral
	if s.Settings.Mode == ModeRoast {
		mood = MoodAnnoyed
	}
	greeting := Message{
		ID:        uuid.NewString(),
		Text:      res.Response,
		Sender:    SenderAI,
		Timestamp: time.Now().UTC(),
		Mood:      mood,
		// greeting carries no points
	}

	s.mu.Lock()
	s.messages = append(s.messages, greeting)
	s.mood = mood
	s.state = StateActive
	s.stopTick = make(chan struct{})
	s.mu.Unlock()

	go s.runCountdown()
	return nil
}

func (s *Session) fail() {
	s.mu.Lock()
	s.state = StateConnectionError
	s.ended = true
	s.mu.Unlock()
}

func (s *Session) runCountdown() {
	t := time.NewTicker(s.tickInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh():
			return
		case <-t.C:
			s.tick()
		}
	}
}

func (s *Session) stopCh() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopTick == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.stopTick
}

// tick advances the countdown by one second. The clock holds still while a
// generation call is outstanding.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != StateActive || s.pending {
		s.mu.Unlock()
		return
	}
	s.timeLeft--
	left := s.timeLeft
	s.mu.Unlock()

	if s.OnTick != nil {
		s.OnTick(left)
	}
	if left <= 0 {
		// timeout ends immediately, no grace delay
		s.end(ReasonTimeout)
	}
}

// Send runs one exchange: append the user message, ask the generator, append
// the scored reply, then evaluate the end conditions. At most one call may be
// outstanding; later submissions are rejected until it resolves.
func (s *Session) Send(ctx context.Context, text string) (*Turn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	// the cap also closes the session during the grace window, before the
	// scheduled end sequence flips the terminal flag
	if s.state != StateActive || s.ended || s.messageCount >= MaxMessages {
		s.mu.Unlock()
		return nil, ErrSessionOver
	}
	if s.pending {
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	s.pending = true
	userMsg := Message{
		ID:        uuid.NewString(),
		Text:      trimmed,
		Sender:    SenderUser,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, userMsg)
	history := s.historyLocked()
	s.mu.Unlock()

	res, err := s.gen.GenerateTurn(ctx, TurnRequest{
		UserMessage: trimmed,
		History:     history,
		Settings:    s.Settings,
		Rules:       s.Rules,
	})

	s.mu.Lock()
	s.pending = false
	var turn Turn
	if err != nil {
		// absorb the failure: fixed reply, fixed single point, mood untouched
		msg := Message{
			ID:        uuid.NewString(),
			Text:      FallbackReply,
			Sender:    SenderAI,
			Timestamp: time.Now().UTC(),
			Points:    1,
		}
		s.messages = append(s.messages, msg)
		s.score++
		s.messageCount++
		turn = Turn{
			Message:  msg,
			Score:    1,
			Fallback: true,
			Notice:   "Using fallback response. Check your API key and connection.",
		}
	} else {
		pts := ClampScore(res.Score, s.Rules)
		mood := MoodFromScore(s.Settings.Mode, pts, s.Rules)
		msg := Message{
			ID:        uuid.NewString(),
			Text:      res.Response,
			Sender:    SenderAI,
			Timestamp: time.Now().UTC(),
			Points:    pts,
			Mood:      mood,
		}
		s.messages = append(s.messages, msg)
		s.score += pts
		s.messageCount++
		s.mood = mood
		turn = Turn{Message: msg, Score: pts, Reasoning: res.Reasoning}
	}
	score := s.score
	count := s.messageCount
	s.mu.Unlock()

	switch {
	case score >= s.Rules.TargetScore:
		// let the player see the winning message before the session closes
		time.AfterFunc(s.graceDelay, func() { s.end(ReasonTarget) })
	case count >= MaxMessages:
		time.AfterFunc(s.graceDelay, func() { s.end(ReasonMessages) })
	}
	return &turn, nil
}

// end runs the end sequence at most once; whichever trigger fires first wins
// and the result reflects that trigger's scoring snapshot.
func (s *Session) end(reason EndReason) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.state = StateEnding
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
	score := s.score
	transcript := make([]Message, len(s.messages))
	copy(transcript, s.messages)
	s.mu.Unlock()

	won := score >= s.Rules.TargetScore
	summary := s.summarize(score, transcript)

	result := &Result{
		FinalScore:  score,
		TargetScore: s.Rules.TargetScore,
		Won:         won,
		Reason:      reason,
		Summary:     summary,
		Transcript:  transcript,
		Record: PlayerRecord{
			Name:       s.Settings.PlayerName,
			Score:      score,
			Difficulty: s.Settings.Difficulty,
			Mode:       s.Settings.Mode,
			Timestamp:  time.Now().UTC(),
		},
	}

	s.mu.Lock()
	s.result = result
	s.state = StateEnded
	s.mu.Unlock()

	if s.OnEnd != nil {
		s.OnEnd(result)
	}
}

func (s *Session) summarize(score int, transcript []Message) *GameSummary {
	req := SummaryRequest{
		PlayerName:  s.Settings.PlayerName,
		FinalScore:  score,
		TargetScore: s.Rules.TargetScore,
		Difficulty:  s.Settings.Difficulty,
		Transcript:  chatHistory(transcript, 0),
	}
	if s.summ != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if summary, err := s.summ.SummarizeGame(ctx, req); err == nil {
			return summary
		}
	}
	return FallbackSummary(s.Settings.PlayerName, score, s.Rules.TargetScore)
}

// Abandon tears the session down without a result, for when the player
// navigates away mid-game.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.state = StateEnded
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

// Snapshot is a point-in-time view of the session for rendering.
type Snapshot struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Score        int       `json:"score"`
	TargetScore  int       `json:"targetScore"`
	MessageCount int       `json:"messageCount"`
	MaxMessages  int       `json:"maxMessages"`
	TimeLeft     int       `json:"timeLeft"`
	Mood         Mood      `json:"mood"`
	Messages     []Message `json:"messages"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ID:           s.ID,
		State:        s.state,
		Score:        s.score,
		TargetScore:  s.Rules.TargetScore,
		MessageCount: s.messageCount,
		MaxMessages:  MaxMessages,
		TimeLeft:     s.timeLeft,
		Mood:         s.mood,
		Messages:     msgs,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the terminal outcome, nil while the session is live.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// historyLocked maps the log to generator roles, trimmed to the most recent
// six entries. Caller holds mu.
func (s *Session) historyLocked() []ChatMessage {
	return chatHistory(s.messages, 6)
}

// chatHistory maps log entries to generator roles; keep <= 0 keeps everything.
func chatHistory(messages []Message, keep int) []ChatMessage {
	start := 0
	if keep > 0 && len(messages) > keep {
		start = len(messages) - keep
	}
	out := make([]ChatMessage, 0, len(messages)-start)
	for _, m := range messages[start:] {
		role := "assistant"
		if m.Sender == SenderUser {
			role = "user"
		}
		out = append(out, ChatMessage{Role: role, Content: m.Text})
	}
	return out
}
