package handler

import (
	"net/http"
	"strings"

	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/assistant"
)

// AssistantHandler handles questions for the travel assistant.
type AssistantHandler struct {
	assistant *assistant.Service
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(a *assistant.Service) *AssistantHandler {
	return &AssistantHandler{assistant: a}
}

// Ask handles POST /api/ai - answer a free-text question. Upstream failures
// come back as a fallback reply, never as an error status.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var input models.AskRequest
	if err := response.Decode(w, r, &input); err != nil || strings.TrimSpace(input.Message) == "" {
		response.BadRequest(w, r, "Message is required", []models.FieldError{
			{Field: "message", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	response.JSON(w, r, http.StatusOK, models.AskResponse{
		Success: true,
		Reply:   h.assistant.Ask(r.Context(), input.Message),
	})
}
