// Package httpx provides the JSON envelope used by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       any                `json:"data,omitempty"`
	Pagination *shared.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Page sends a 200 success envelope carrying pagination metadata.
func Page(w http.ResponseWriter, message string, data any, page shared.Pagination) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &page})
}

// Fail sends a failure envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}
