// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": true, "data": ..., "count": 3}
//	{"success": false, "message": "Product not found"}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
)

type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Write sends body with the given status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	JSON(w, status, body)
}

// JSON sends any value as JSON, for responses outside the envelope.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// List sends a 200 with data and its element count.
func List(w http.ResponseWriter, data interface{}, count int) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Success: false, Message: message})
}

// FromError maps a service error onto its status and client-facing message.
// Internal details are only echoed outside production.
func FromError(w http.ResponseWriter, err error) {
	Write(w, apperr.Status(err), Envelope{
		Success: false,
		Message: apperr.Message(err, !config.IsProduction()),
		Errors:  apperr.Fields(err),
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
