package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/planforge/internal/refine"
)

// messagesResponse builds a minimal Messages API reply wrapping text.
func messagesResponse(text string) string {
	resp := map[string]any{
		"id":   "msg_test",
		"type": "message",
		"role": "assistant",
		"content": []map[string]string{
			{"type": "text", "text": text},
		},
		"model":       "claude-3-5-sonnet-20241022",
		"stop_reason": "end_turn",
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

const draftJSON = `{"idea":{"raw_description":"a chat app"},"phases":[{"index":1,"name":"Foundation","steps":[{"index":1,"title":"Init","description":"Set up","guidance":"Learn the module layout and tooling"}]}],"notes":"go slow"}`

func TestGenerateDraft(t *testing.T) {
	var gotPath, gotAPIKey, gotVersion string
	var gotBody ClaudeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		gotVersion = r.Header.Get("Anthropic-Version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesResponse("Here is your plan:\n" + draftJSON)))
	}))
	defer srv.Close()

	client, err := NewClaudeClient("test-key", srv.URL, "", nil)
	require.NoError(t, err)

	draft, err := client.GenerateDraft(context.Background(), &refine.DraftRequest{
		Idea:    "a chat app",
		Attempt: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Contains(t, gotBody.System, `"phases"`, "system prompt embeds the plan schema")
	require.Len(t, gotBody.Messages, 1)
	assert.Contains(t, gotBody.Messages[0].Content, "a chat app")

	require.Len(t, draft.Phases, 1)
	assert.Equal(t, "go slow", draft.Notes)
}

func TestGenerateDraftCarriesFeedback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ClaudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[0].Content, "previous draft was rejected")
		assert.Contains(t, req.Messages[0].Content, "too few phases")
		_, _ = w.Write([]byte(messagesResponse(draftJSON)))
	}))
	defer srv.Close()

	client, err := NewClaudeClient("test-key", srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.GenerateDraft(context.Background(), &refine.DraftRequest{
		Idea:     "a chat app",
		Feedback: "too few phases",
		Attempt:  2,
	})
	require.NoError(t, err)
}

func TestGenerateDraftAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	client, err := NewClaudeClient("test-key", srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.GenerateDraft(context.Background(), &refine.DraftRequest{Idea: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (429): slow down")
}

func TestGenerateDraftNoJSONInReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(messagesResponse("I cannot produce a plan for that.")))
	}))
	defer srv.Close()

	client, err := NewClaudeClient("test-key", srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.GenerateDraft(context.Background(), &refine.DraftRequest{Idea: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object in draft response")
}

func TestNewClaudeClientRequiresAPIKey(t *testing.T) {
	_, err := NewClaudeClient("", "", "", nil)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "markdown fences",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "preamble and trailer",
			input: `Sure! {"a":{"b":2}} Hope that helps.`,
			want:  `{"a":{"b":2}}`,
		},
		{
			name:    "no object",
			input:   "nothing here",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestScrubSecrets(t *testing.T) {
	input := "use ANTHROPIC_API_KEY=sk-ant-secret and password: hunter2 in the app"
	out := scrubSecrets(input)

	assert.NotContains(t, out, "sk-ant-secret")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "[REDACTED]")
}
