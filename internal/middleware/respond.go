package middleware

import (
	"encoding/json"
	"net/http"

	"rescue-console/internal/model"
)

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	}
	if id := RequestIDFromContext(r.Context()); id != "" {
		response.Meta = &model.Meta{RequestID: id}
	}
	_ = json.NewEncoder(w).Encode(response)
}
