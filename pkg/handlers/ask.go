// Package handlers implements the HTTP transport for the agent.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/services"
)

// AskHandler exposes the question-to-insight pipeline over HTTP.
type AskHandler struct {
	agent  services.Agent
	logger *zap.Logger
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(agent services.Agent, logger *zap.Logger) *AskHandler {
	return &AskHandler{agent: agent, logger: logger.Named("ask-handler")}
}

// RegisterRoutes registers the handler's routes on the given router.
func (h *AskHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/ask", h.Ask)
}

// Ask handles POST /api/ask. The request carries `{ "text": "..." }`; a
// successful run returns the answer, rows, SQL, and optional chart, while
// any pipeline failure maps to a 400 carrying the error and a suggestion.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest,
			"invalid request body",
			"Send JSON like {\"text\": \"Show me total sales for item 123\"}", ""); werr != nil {
			h.logger.Error("failed to write error response", zap.Error(werr))
		}
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		if werr := ErrorResponse(w, http.StatusBadRequest,
			"question text is required",
			"Send JSON like {\"text\": \"Show me total sales for item 123\"}", ""); werr != nil {
			h.logger.Error("failed to write error response", zap.Error(werr))
		}
		return
	}

	resp := h.agent.Ask(r.Context(), req.Text)
	if !resp.Success {
		if werr := ErrorResponse(w, http.StatusBadRequest, resp.Error, resp.Suggestion, resp.SQL); werr != nil {
			h.logger.Error("failed to write error response", zap.Error(werr))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
