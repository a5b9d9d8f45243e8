package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatbot-backend/internal/models"
)

const (
	defaultBaseURL = "https://api.aimlapi.com"
	defaultModel   = "openai/gpt-4o-mini"
	// Retired identifier still sent by older clients; silently replaced
	// with the default model.
	retiredModel = "perplexity/sonar"

	systemPrompt = "You are a helpful assistant that can answer questions and help with tasks."

	balanceNegativeMessage = "Your account balance is negative. Please top up to continue."
)

// Search-provider plugins passed upstream when web search is enabled.
var searchPlugins = []string{"websearch"}

// CompletionService proxies a conversation to the completion API and
// replays the buffered result as a chunk stream.
type CompletionService struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewCompletionService(apiKey, baseURL string, timeout time.Duration) *CompletionService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CompletionService{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// ──── Upstream wire types ────

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model      string       `json:"model"`
	Messages   []apiMessage `json:"messages"`
	MCPServers []string     `json:"mcp_servers,omitempty"`
	Stream     bool         `json:"stream"`
}

type urlCitation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type annotation struct {
	Type        string       `json:"type"`
	URLCitation *urlCitation `json:"url_citation"`
}

type choiceMessage struct {
	// Content is either a plain string or an array of typed parts.
	Content     json.RawMessage `json:"content"`
	Annotations []annotation    `json:"annotations"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type completionChoice struct {
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

type sourceCitation struct {
	URL   string
	Title string
}

// Complete issues one non-streaming completion call and returns the
// closed chunk stream for the assistant turn. Every failure path
// returns before the first chunk is produced; no partial stream is
// ever emitted.
func (s *CompletionService) Complete(ctx context.Context, req models.ChatRequest) (<-chan models.StreamChunk, error) {
	if s.apiKey == "" {
		return nil, &ConfigurationError{Message: "AIML_API_KEY is not set"}
	}

	payload := buildPayload(req)
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Message: "failed to build completion API request"}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Message: "failed to reach completion API"}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Message: "failed to read completion API response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp.StatusCode, respBody)
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &ResponseFormatError{Message: "invalid JSON response from completion API"}
	}

	text, citations, finishReason := normalize(&completion, req.WebSearch)

	return emitChunks(text, citations, finishReason), nil
}

// buildPayload normalizes the model, filters the conversation down to
// non-empty user/assistant messages, and prepends the system message.
func buildPayload(req models.ChatRequest) completionRequest {
	model := req.Model
	if model == "" || model == retiredModel {
		model = defaultModel
	}

	messages := []apiMessage{{Role: "system", Content: systemPrompt}}
	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		content := flattenTextParts(m.Parts)
		if content == "" {
			continue
		}
		messages = append(messages, apiMessage{Role: m.Role, Content: content})
	}

	payload := completionRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}
	if req.WebSearch {
		payload.MCPServers = searchPlugins
	}

	return payload
}

func flattenTextParts(parts []models.MessagePart) string {
	var lines []string
	for _, p := range parts {
		if p.Type != "text" {
			continue
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}

// upstreamError derives a user-facing message from a non-success
// response. 402 means the account balance went negative and gets a
// fixed message regardless of the body.
func upstreamError(status int, body []byte) *UpstreamError {
	if status == http.StatusPaymentRequired {
		return &UpstreamError{Status: status, Message: balanceNegativeMessage}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"detail", "error"} {
			var msg string
			if raw, ok := fields[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
				return &UpstreamError{Status: status, Message: msg}
			}
		}
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		return &UpstreamError{Status: status, Message: msg}
	}

	return &UpstreamError{Status: status, Message: "completion API request failed"}
}

// normalize extracts text, citations, and the mapped finish reason from
// the first choice. A response with no choices is tolerated and treated
// as empty content with the default finish reason.
func normalize(completion *completionResponse, webSearch bool) (string, []sourceCitation, string) {
	if len(completion.Choices) == 0 {
		return "", nil, models.FinishStop
	}

	choice := completion.Choices[0]
	text := flattenContent(choice.Message.Content)

	var citations []sourceCitation
	if webSearch {
		citations = dedupeCitations(choice.Message.Annotations)
	}

	return text, citations, mapFinishReason(choice.FinishReason)
}

func flattenContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var b strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// dedupeCitations keeps the first occurrence per URL, in order. The
// first title seen for a URL wins; a missing title falls back to the
// URL itself.
func dedupeCitations(annotations []annotation) []sourceCitation {
	seen := make(map[string]bool)
	var citations []sourceCitation
	for _, a := range annotations {
		if a.Type != "url_citation" || a.URLCitation == nil || a.URLCitation.URL == "" {
			continue
		}
		if seen[a.URLCitation.URL] {
			continue
		}
		seen[a.URLCitation.URL] = true

		title := a.URLCitation.Title
		if title == "" {
			title = a.URLCitation.URL
		}
		citations = append(citations, sourceCitation{URL: a.URLCitation.URL, Title: title})
	}
	return citations
}

func mapFinishReason(reason string) string {
	switch reason {
	case "", "stop":
		return models.FinishStop
	case "length":
		return models.FinishLength
	case "content_filter":
		return models.FinishContentFilter
	case "tool_calls", "function_call":
		return models.FinishToolCalls
	default:
		return models.FinishOther
	}
}

// emitChunks replays the buffered completion as a closed chunk stream:
// start, text-start, text-delta (skipped when empty), text-end, one
// source-url per citation, finish.
func emitChunks(text string, citations []sourceCitation, finishReason string) <-chan models.StreamChunk {
	messageID := "msg_" + uuid.NewString()
	textID := "txt_" + uuid.NewString()

	out := make(chan models.StreamChunk, len(citations)+5)

	out <- models.StreamChunk{Type: models.ChunkStart, MessageID: messageID}
	out <- models.StreamChunk{Type: models.ChunkTextStart, ID: textID}
	if text != "" {
		out <- models.StreamChunk{Type: models.ChunkTextDelta, ID: textID, Delta: text}
	}
	out <- models.StreamChunk{Type: models.ChunkTextEnd, ID: textID}
	for i, c := range citations {
		out <- models.StreamChunk{
			Type:     models.ChunkSourceURL,
			SourceID: fmt.Sprintf("citation-%d", i),
			URL:      c.URL,
			Title:    c.Title,
		}
	}
	out <- models.StreamChunk{Type: models.ChunkFinish, FinishReason: finishReason}
	close(out)

	return out
}
