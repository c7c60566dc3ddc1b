// Package httpjson standardizes JSON responses and error mapping for
// the API. Every error response has the same shape:
//
//	{"error": "not_found", "message": "listing not found: abc"}
//
// so the frontend always knows what fields to expect.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/praxishq/praxis/internal/app/system/apperror"
	"go.uber.org/zap"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Write sends data as JSON with the given status. Headers must be set
// before the first body write, so the order here matters.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	// Encoding failures after WriteHeader can only be logged by the
	// caller; the payloads here are plain structs so this is rare.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError maps a domain error to a status code and uniform body.
// Unknown errors become a generic 500 so internal details never leak.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		kind := "internal_error"
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, kind = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status, kind = http.StatusUnauthorized, "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status, kind = http.StatusForbidden, "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status, kind = http.StatusNotFound, "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status, kind = http.StatusConflict, "conflict"
		}
		Write(w, status, ErrorResponse{Error: kind, Message: appErr.Message, Field: appErr.Field})
		return
	}

	if log != nil {
		log.Error("unhandled error in handler", zap.Error(err))
	}
	Write(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred.",
	})
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("", "Invalid JSON body.")
	}
	return nil
}
