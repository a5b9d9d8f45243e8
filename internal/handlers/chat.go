package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

type completionService interface {
	Complete(ctx context.Context, req models.ChatRequest) (<-chan models.StreamChunk, error)
}

type ChatHandler struct {
	completions completionService
}

func NewChatHandler(completions completionService) *ChatHandler {
	return &ChatHandler{completions: completions}
}

// Chat proxies one conversation turn to the completion API and streams
// the result back as Server-Sent Events. Failures produce a single
// JSON error body instead of a stream.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream, err := h.completions.Complete(r.Context(), req)
	if err != nil {
		handleCompletionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("x-vercel-ai-ui-message-stream", "v1")

	flusher, _ := w.(http.Flusher)
	for chunk := range stream {
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

func handleCompletionError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *services.ConfigurationError:
		writeError(w, http.StatusInternalServerError, e.Message)
	case *services.NetworkError:
		writeError(w, http.StatusBadGateway, e.Message)
	case *services.ResponseFormatError:
		writeError(w, http.StatusBadGateway, e.Message)
	case *services.UpstreamError:
		writeError(w, e.Status, e.Message)
	default:
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
