package middleware

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
	// Max is set on stock notices: the largest quantity the product allows.
	Max *int `json:"max,omitempty"`
}

// WriteError writes a JSON error body carrying the request's correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteErrorBody(w, status, ErrorResponse{
		Error:         msg,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

func WriteErrorBody(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
