// Package suggestions asks a language model to break a project description
// into candidate subtasks.
package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	dto "nextlevel.com/nextlevel/internal/data_models"
)

const maxTokens = 2048

type Client struct {
	client anthropic.Client
	model  string
}

// NewClient builds a Messages API client. Extra options are appended after
// the API key, so tests can point it at a local server.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// SuggestSubtasks returns the model's subtasks as task requests. The output is
// decoded, not validated.
func (c *Client) SuggestSubtasks(ctx context.Context, description string) ([]dto.CreateTaskRequest, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(description))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm api call: %w", err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("empty llm response")
	}

	raw, err := extractJSON(msg.Content[0].Text)
	if err != nil {
		return nil, err
	}

	var out struct {
		Subtasks []dto.CreateTaskRequest `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out.Subtasks, nil
}

func buildPrompt(description string) string {
	return fmt.Sprintf(`Break the following project into 3 to 5 concrete, measurable subtasks a person can act on.

Project description:
%s

Output ONLY a valid JSON object matching this exact schema:
{
  "subtasks": [
    {
      "title": "<short, clear title>",
      "description": "<what exactly has to be done>",
      "category": "<HEALTH|ENTERTAINMENT|SOCIAL|NATURE|MISCELLANEOUS>",
      "type": "<ONCE|RECURRENT>",
      "recurrence_interval_days": <days between repetitions, only for RECURRENT, otherwise null>,
      "difficulty": <integer 1 (very easy) to 5 (very hard)>,
      "experience_reward": <integer 1 to 100, proportional to difficulty>
    }
  ]
}

Rules:
- Use RECURRENT with an interval for habits (e.g. exercising every day), ONCE otherwise
- Keep every subtask consistent with the project description
- Write the subtasks in the language of the description
- Output ONLY the JSON, no markdown, no explanations`, description)
}

// extractJSON finds the outermost JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in llm response")
	}
	return s[start : end+1], nil
}
