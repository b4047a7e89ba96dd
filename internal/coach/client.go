package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	defaultModel  = "claude-sonnet-4-20250514"

	// ModelEnv overrides the default model name.
	ModelEnv = "AURUM_COACH_MODEL"
)

var ErrNoAPIKey = errors.New("coach: ANTHROPIC_API_KEY not set")

// APIError is a non-OK answer from the messages API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("coach: api error (status %d): %s", e.Status, e.Message)
}

// Client talks to an Anthropic-style messages API.
type Client struct {
	apiKey string
	model  string
	url    string
	http   *http.Client
}

func NewClient(apiKey, model, url string) *Client {
	if model == "" {
		model = defaultModel
	}
	if url == "" {
		url = defaultAPIURL
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		url:    url,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey, os.Getenv(ModelEnv), ""), nil
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Narrate asks the model to rephrase a deterministic why-statement as a
// short coaching note.
func (c *Client) Narrate(ctx context.Context, why Why) (string, error) {
	text, err := c.complete(ctx, narratePrompt(why))
	if err != nil {
		return "", err
	}
	var out struct {
		Narrative string `json:"narrative"`
	}
	if err := json.Unmarshal([]byte(unfence(text)), &out); err != nil {
		return "", fmt.Errorf("coach: parse json: %w (response: %s)", err, text)
	}
	if strings.TrimSpace(out.Narrative) == "" {
		return "", errors.New("coach: empty narrative")
	}
	return strings.TrimSpace(out.Narrative), nil
}

func narratePrompt(why Why) string {
	var sb strings.Builder
	sb.WriteString("You are a supportive productivity coach. Rephrase the facts below as one warm, specific sentence telling the user why this task matters today. Return JSON only.\n\n")
	fmt.Fprintf(&sb, "Task: %s\n", why.TaskName)
	if why.ProjectName != "" {
		fmt.Fprintf(&sb, "Project: %s\n", why.ProjectName)
	}
	if why.AreaName != "" {
		fmt.Fprintf(&sb, "Area: %s\n", why.AreaName)
	}
	if why.PillarName != "" {
		fmt.Fprintf(&sb, "Pillar: %s\n", why.PillarName)
	}
	fmt.Fprintf(&sb, "Score: %.2f (priority %.0f, urgency %.0f)\n", why.Score, why.PriorityWeight, why.Urgency)
	fmt.Fprintf(&sb, "Points on completion: %d\n\n", why.Points)
	sb.WriteString(`Return a JSON object with this structure:
{"narrative": "one sentence"}

Return ONLY the JSON, no other text.`)
	return sb.String()
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("coach: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("coach: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("coach: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("coach: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("coach: unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return "", APIError{Status: resp.StatusCode, Message: apiResp.Error.Message}
	}
	if len(apiResp.Content) == 0 {
		return "", errors.New("coach: empty response")
	}
	return apiResp.Content[0].Text, nil
}

// unfence strips a markdown code fence the model may wrap around JSON.
func unfence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
