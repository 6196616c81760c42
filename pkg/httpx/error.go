// Package httpx writes the API's uniform JSON error shape: every failure is
// a single object {"error": "message"} with the matching status code.
package httpx

import (
	"encoding/json"
	"net/http"
)

func write(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func BadRequest(w http.ResponseWriter, message string)   { write(w, http.StatusBadRequest, message) }
func Unauthorized(w http.ResponseWriter, message string) { write(w, http.StatusUnauthorized, message) }
func Forbidden(w http.ResponseWriter, message string)    { write(w, http.StatusForbidden, message) }
func NotFound(w http.ResponseWriter, message string)     { write(w, http.StatusNotFound, message) }
func Conflict(w http.ResponseWriter, message string)     { write(w, http.StatusConflict, message) }
func BadGateway(w http.ResponseWriter, message string)   { write(w, http.StatusBadGateway, message) }
func Internal(w http.ResponseWriter, message string)     { write(w, http.StatusInternalServerError, message) }

// Error writes an arbitrary status with the uniform error body.
func Error(w http.ResponseWriter, status int, message string) { write(w, status, message) }
