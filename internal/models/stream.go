package models

// Chunk types emitted for one assistant turn, in order: start,
// text-start, text-delta, text-end, source-url (zero or more), finish.
const (
	ChunkStart     = "start"
	ChunkTextStart = "text-start"
	ChunkTextDelta = "text-delta"
	ChunkTextEnd   = "text-end"
	ChunkSourceURL = "source-url"
	ChunkFinish    = "finish"
)

// Finish reasons in the outbound taxonomy.
const (
	FinishStop          = "stop"
	FinishLength        = "length"
	FinishContentFilter = "content-filter"
	FinishToolCalls     = "tool-calls"
	FinishOther         = "other"
)

// StreamChunk is one unit of the outbound UI message stream. Which
// fields are set depends on Type.
type StreamChunk struct {
	Type         string `json:"type"`
	MessageID    string `json:"messageId,omitempty"`    // start
	ID           string `json:"id,omitempty"`           // text-start, text-delta, text-end
	Delta        string `json:"delta,omitempty"`        // text-delta
	SourceID     string `json:"sourceId,omitempty"`     // source-url
	URL          string `json:"url,omitempty"`          // source-url
	Title        string `json:"title,omitempty"`        // source-url
	FinishReason string `json:"finishReason,omitempty"` // finish
}

// ErrorResponse is the JSON body returned on any failure path.
type ErrorResponse struct {
	Error string `json:"error"`
}
