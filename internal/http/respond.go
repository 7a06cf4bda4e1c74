// Package http provides the budgetrip JSON API server.
//
// This file implements the response envelope. Success bodies are
// `{"data": ...}` and errors are `{"error": "..."}`, so clients can
// always dispatch on the top-level key.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// writeData writes a success envelope with the given status code.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(dataEnvelope{Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error envelope with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message)
}

func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, message)
}

func unprocessable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, message)
}

func internalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, message)
}
