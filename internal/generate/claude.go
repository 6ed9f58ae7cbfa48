package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forgelabs/planforge/internal/plan"
	"github.com/forgelabs/planforge/internal/refine"
)

// ClaudeClient generates plan drafts using the Anthropic Messages API.
// It implements refine.Generator.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClaudeRequest represents the request format for the Messages API.
type ClaudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []ClaudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
}

// ClaudeMessage represents a message in the conversation.
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeResponse represents the response from the Messages API.
type ClaudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ClaudeError represents an error response from the Messages API.
type ClaudeError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClaudeClient creates a new draft generator backed by the
// Anthropic API.
func NewClaudeClient(apiKey, baseURL, model string, logger *zap.Logger) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ClaudeClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// GenerateDraft implements refine.Generator.
func (c *ClaudeClient) GenerateDraft(ctx context.Context, req *refine.DraftRequest) (*plan.Plan, error) {
	schema, err := plan.SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to build plan schema: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an expert project planner for learning-oriented software projects. Produce a complete project plan as a single JSON object matching this schema:

%s

Requirements:
- Exactly 5 phases, numbered 1-5, each with sequential globally-numbered steps
- Every step carries a "guidance" field explaining what the learner gains and how to implement it autonomously
- Dependencies reference only earlier step indexes
- Be decisive and specific; no ambiguous language like "consider" or "if needed"

Respond with ONLY the JSON object, no preamble or markdown fences.`, schema)

	var user strings.Builder
	fmt.Fprintf(&user, "Project idea: %s\n", scrubSecrets(req.Idea))
	fmt.Fprintf(&user, "Skill level: %s\n", req.Profile.SkillLevel)
	fmt.Fprintf(&user, "Project type: %s\n", req.Profile.ProjectType)
	if req.Profile.TimeConstraint != "" {
		fmt.Fprintf(&user, "Time available: %s\n", req.Profile.TimeConstraint)
	}
	if req.Feedback != "" {
		fmt.Fprintf(&user, "\nYour previous draft was rejected. Revise it to address every issue below:\n%s\n", req.Feedback)
	}

	text, err := c.complete(ctx, systemPrompt, user.String())
	if err != nil {
		return nil, err
	}

	blob, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	draft, err := plan.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}

	c.logger.Debug("draft generated",
		zap.Int("attempt", req.Attempt),
		zap.Int("phases", len(draft.Phases)),
		zap.Int("steps", draft.TotalSteps()),
	)

	return draft, nil
}

// complete sends one Messages API request and returns the text of the
// first content block.
func (c *ClaudeClient) complete(ctx context.Context, system, user string) (string, error) {
	req := ClaudeRequest{
		Model:       c.model,
		MaxTokens:   8192,
		Temperature: 0.7,
		System:      system,
		Messages: []ClaudeMessage{
			{Role: "user", Content: user},
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ClaudeError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	text := claudeResp.Content[0].Text
	if text == "" {
		return "", fmt.Errorf("empty draft text")
	}

	return text, nil
}

// extractJSON pulls the JSON object out of the model's reply, tolerating
// preamble text and markdown fences.
func extractJSON(text string) ([]byte, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in draft response")
	}
	return []byte(text[start : end+1]), nil
}

// scrubSecrets removes common secret patterns from the idea text before
// sending it to the API.
func scrubSecrets(content string) string {
	patterns := []struct {
		regex       *regexp.Regexp
		replacement string
	}{
		{
			regexp.MustCompile(`(OPENAI_API_KEY|ANTHROPIC_API_KEY|GITHUB_TOKEN|GITLAB_TOKEN|AWS_SECRET_ACCESS_KEY)\s*=\s*([^\s]+)`),
			"$1=[REDACTED]",
		},
		{
			regexp.MustCompile(`sk-ant-[a-zA-Z0-9-]{80,}`),
			"[REDACTED]",
		},
		{
			regexp.MustCompile(`(?i)(api[_-]?key|apikey|token|password)\s*[:=]\s*["']?\s*([^"'\s]+)["']?`),
			"$1=[REDACTED]",
		},
		{
			regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.=]+`),
			"[REDACTED]",
		},
	}

	result := content
	for _, p := range patterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}
