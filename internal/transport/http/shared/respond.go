// Package shared centralizes JSON response and error envelope handling so
// every handler stays consistent.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"zoowatch/pkg/domainerrors"
)

// errorResponse is the wire shape of every error.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a coded domain error into the HTTP response.
// Non-coded errors become opaque 500s; underlying causes never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: string(domainerrors.CodeInternal), Message: "internal server error"}

	var de *domainerrors.Error
	if errors.As(err, &de) {
		status = domainerrors.ToHTTPStatus(de.Code)
		resp = errorResponse{Error: string(de.Code), Message: de.Message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
