package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body: status is "ok" or "error",
// message is human-readable, and any payload fields ride alongside.
type Envelope map[string]interface{}

// WriteOK writes a 200 envelope with the given message and payload
// fields merged in.
func WriteOK(w http.ResponseWriter, message string, payload Envelope) {
	WriteStatus(w, http.StatusOK, message, payload)
}

// WriteStatus writes an ok envelope with an explicit status code.
func WriteStatus(w http.ResponseWriter, statusCode int, message string, payload Envelope) {
	body := Envelope{"status": "ok"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, statusCode, body)
}

// WriteErrorEnvelope writes an error envelope with extra payload
// fields (e.g. remaining_seconds on a lockout).
func WriteErrorEnvelope(w http.ResponseWriter, statusCode int, message string, payload Envelope) {
	body := Envelope{"status": "error", "message": message}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, statusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Log-free best effort; an encoding failure here has nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorEnvelope(w, http.StatusBadRequest, message, nil)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorEnvelope(w, http.StatusUnauthorized, message, nil)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorEnvelope(w, http.StatusNotFound, message, nil)
}

func WriteLockedOut(w http.ResponseWriter, message string, remainingSeconds int) {
	WriteErrorEnvelope(w, http.StatusTooManyRequests, message, Envelope{
		"remaining_seconds": remainingSeconds,
	})
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteErrorEnvelope(w, http.StatusInternalServerError, message, nil)
}
