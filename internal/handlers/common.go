package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// formValues reads the named fields from either an HTML form body or a
// JSON body, depending on Content-Type. Missing fields come back as empty
// strings.
func formValues(r *http.Request, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			for _, k := range keys {
				out[k] = body[k]
			}
		}
		return out
	}

	for _, k := range keys {
		out[k] = r.PostFormValue(k)
	}
	return out
}
