package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Client represents an OpenAI API client
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// New creates a new OpenAI client
func New(apiKey, apiBase, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}

	client := openai.NewClientWithConfig(config)
	return &Client{
		client:  client,
		model:   model,
		timeout: 30 * time.Second,
		logger:  logger.New("openai"),
	}
}

type readingResponse struct {
	Dish    string `json:"dish"`
	Reading string `json:"reading"`
}

// DishReading asks the model for the hiragana reading of a Japanese dish
// name as shown on the kitchen display
func (c *Client) DishReading(dish string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`
You are assisting the kitchen of a Japanese ryokan. Give the reading of the dish name "%s" in hiragana,
the way it is read aloud in a kaiseki kitchen. Katakana loanwords stay in katakana.
Return the information in the following JSON format:
{
  "dish": "the dish name as given",
  "reading": "reading"
}
Only return the JSON, no other text.
`, dish)

	c.logger.Info("Requesting reading for %s", dish)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a Japanese cuisine expert who knows how dish names are read.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.1,
		},
	)

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI API")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("OpenAI response (first 100 chars): %s", truncateString(content, 100))

	reading, err := parseReading(content)
	if err != nil {
		c.logger.Error("Failed to parse response: %v, Content: %s", err, content)
		return "", err
	}
	return reading, nil
}

// parseReading extracts the reading from a model reply. A bare reading
// without JSON is accepted as long as it is a single line.
func parseReading(content string) (string, error) {
	content = cleanJSONResponse(content)

	var r readingResponse
	if err := json.Unmarshal([]byte(content), &r); err == nil {
		if reading := strings.TrimSpace(r.Reading); reading != "" {
			return reading, nil
		}
		return "", fmt.Errorf("empty reading in OpenAI response")
	}

	plain := strings.Trim(strings.TrimSpace(content), `"「」`)
	if plain == "" || strings.ContainsAny(plain, "\n{}") {
		return "", fmt.Errorf("failed to parse OpenAI response: %q", truncateString(content, 100))
	}
	return plain, nil
}

// truncateString truncates a string to the specified number of characters
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// cleanJSONResponse cleans up the JSON response from OpenAI
// Sometimes the model returns markdown code blocks with ```json and ``` delimiters
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// Skip the first line, which might contain "```json"
		if firstLineEnd := strings.Index(s, "\n"); firstLineEnd != -1 {
			s = s[firstLineEnd+1:]
		}
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}
