package models

// MessagePart is one typed segment of a conversation message. The UI
// sends text, source-url, and reasoning parts; only text parts are
// forwarded to the completion API.
type MessagePart struct {
	Type  string `json:"type"` // "text", "source-url", "reasoning"
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ConversationMessage represents a single message in a conversation.
type ConversationMessage struct {
	Role  string        `json:"role"` // "user", "assistant" or "system"
	Parts []MessagePart `json:"parts"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages  []ConversationMessage `json:"messages"`
	Model     string                `json:"model"`
	WebSearch bool                  `json:"webSearch"`
}
