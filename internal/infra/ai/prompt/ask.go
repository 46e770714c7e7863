package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/datascope/internal/domain/ai"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a data analyst answering questions about a tabular dataset. You are given pre-computed column statistics only, not the rows. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Answer only from the statistics provided. Never invent values.
- If the question cannot be answered from the statistics, put the reason in "answer" and suggest a supported question.
- Keep the answer to one or two plain sentences. No HTML.

Schema:
{
  "answer": "<string>"
}`
}

// GetUserPrompt embeds the payload as JSON next to the question.
func GetUserPrompt(question string, p *analytics.Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return fmt.Sprintf("Statistics (JSON): %s\n\nQuestion: %s", b, question), nil
}

// ParseAnswer reads the model's JSON object into a Response.
func ParseAnswer(raw string) (ask.Response, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return ask.Response{}, fmt.Errorf("failed to parse ai answer: %w", err)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return ask.Response{}, ai.ErrEmptyCompletion
	}
	return ask.Response{Answer: out.Answer}, nil
}

// ModelAnswerer answers through a chat-completion model.
type ModelAnswerer struct {
	Completer ai.Completer
}

func NewModelAnswerer(c ai.Completer) *ModelAnswerer {
	return &ModelAnswerer{Completer: c}
}

func (m *ModelAnswerer) Answer(ctx context.Context, question string, p *analytics.Payload) (ask.Response, error) {
	user, err := GetUserPrompt(question, p)
	if err != nil {
		return ask.Response{}, err
	}
	raw, err := m.Completer.Complete(ctx, GetSystemPrompt(), user)
	if err != nil {
		return ask.Response{}, err
	}
	return ParseAnswer(raw)
}
