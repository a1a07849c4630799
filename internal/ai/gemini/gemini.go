// Package gemini talks to Google's generative language API. It implements
// the game's Generator and Summarizer boundaries.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flirtchampion/backend/internal/ai"
	"github.com/flirtchampion/backend/internal/game"
)

const defaultModel = "gemini-2.0-flash"

type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	http    *http.Client
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   defaultModel,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Probe checks the credential with a lightweight models listing. This is the
// only validation the key ever gets.
func (c *Client) Probe(ctx context.Context) error {
	if c.APIKey == "" {
		return errors.New("missing API key")
	}
	req, _ := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/v1beta/models", nil)
	req.Header.Set("X-goog-api-key", c.APIKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	return nil
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

// GenerateTurn asks the model for a scored in-character reply.
func (c *Client) GenerateTurn(ctx context.Context, req game.TurnRequest) (*game.TurnResult, error) {
	intro := req.UserMessage == game.StartSentinel || len(req.History) == 0

	var prompt string
	var history []content
	if intro {
		prompt = ai.BuildIntroPrompt(req)
	} else {
		prompt = ai.BuildTurnPrompt(req)
		for _, m := range req.History {
			role := "model"
			if m.Role == "user" {
				role = "user"
			}
			history = append(history, content{Role: role, Parts: []part{{Text: m.Content}}})
		}
	}

	contents := append([]content{{Role: "user", Parts: []part{{Text: prompt}}}}, history...)
	text, err := c.generate(ctx, contents, generationConfig{
		Temperature:      1.0,
		MaxOutputTokens:  400,
		ResponseMimeType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Response        string `json:"response"`
		Score           int    `json:"score"`
		Reasoning       string `json:"reasoning"`
		MoodExplanation string `json:"mood_explanation"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		// not valid JSON: treat the whole reply as the message
		return &game.TurnResult{
			Response:  text,
			Score:     ai.ParseFallbackScore(req.Settings),
			Reasoning: "Unable to parse structured response",
		}, nil
	}
	if parsed.Response == "" {
		parsed.Response = "I'm not sure how to respond to that..."
	}
	return &game.TurnResult{
		Response:        parsed.Response,
		Score:           parsed.Score,
		Reasoning:       parsed.Reasoning,
		MoodExplanation: parsed.MoodExplanation,
	}, nil
}

// SummarizeGame asks the model for the end-of-game narrative.
func (c *Client) SummarizeGame(ctx context.Context, req game.SummaryRequest) (*game.GameSummary, error) {
	prompt := ai.BuildSummaryPrompt(req)
	text, err := c.generate(ctx, []content{{Role: "user", Parts: []part{{Text: prompt}}}}, generationConfig{
		Temperature:      0.8,
		MaxOutputTokens:  300,
		ResponseMimeType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	var summary game.GameSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	if summary.Tagline == "" {
		summary.Tagline = "Conversation Adventurer"
	}
	if summary.Title == "" {
		if req.FinalScore >= req.TargetScore {
			summary.Title = "Victory!"
		} else {
			summary.Title = "Better Luck Next Time!"
		}
	}
	if summary.Description == "" {
		summary.Description = "You gave it your best shot in this flirting challenge!"
	}
	return &summary, nil
}

func (c *Client) generate(ctx context.Context, contents []content, cfg generationConfig) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("missing API key")
	}
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	payload := map[string]any{
		"contents":         contents,
		"generationConfig": cfg,
	}
	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, model)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("X-goog-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates")
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}
