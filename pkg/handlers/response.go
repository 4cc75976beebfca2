package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes the failure payload: a human-readable error, a
// best-effort suggestion, and the generated SQL when one exists.
func ErrorResponse(w http.ResponseWriter, statusCode int, errMsg, suggestion, sql string) error {
	payload := map[string]any{
		"success":    false,
		"error":      errMsg,
		"suggestion": suggestion,
	}
	if sql != "" {
		payload["sql"] = sql
	}
	return WriteJSON(w, statusCode, payload)
}
