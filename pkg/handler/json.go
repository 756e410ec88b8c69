package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

// maxBodyBytes caps request bodies accepted by Decode.
const maxBodyBytes = 1 << 20 // 1 MiB

// ErrInvalidBody is returned by Decode for malformed or oversized payloads.
var ErrInvalidBody = errors.New("invalid request body")

// ErrorResponse is the API's error envelope.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing to do but drop the body.
		return
	}
}

// Error writes an ErrorResponse with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ValidationFailed writes a 400 carrying the per-field messages extracted
// from an ozzo-validation error. Non-validation errors fall back to a plain
// message.
func ValidationFailed(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "validation failed"}
	var fields validation.Errors
	if errors.As(err, &fields) {
		resp.Details = make(map[string][]string, len(fields))
		for field, fieldErr := range fields {
			resp.Details[field] = []string{fieldErr.Error()}
		}
	} else if err != nil {
		resp.Error = err.Error()
	}
	JSON(w, http.StatusBadRequest, resp)
}

// Decode parses the request body into v, rejecting bodies over maxBodyBytes.
// Failures wrap ErrInvalidBody.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// NoStore marks the response as uncacheable.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
