// Package jsonutil writes the JSON envelopes every API handler shares and
// reads size-capped request bodies.
//
// Errors are always {"error": reason}; field-level validation failures add a
// "fields" object keyed by field name.
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrTooLarge is returned by ReadBody and Decode when the body exceeds the
// caller's limit.
var ErrTooLarge = errors.New("request body too large")

// ValidationReason is the "error" value of a field-level validation response.
const ValidationReason = "validation failed"

// Write sends v as JSON with the given status. A nil v sends headers only.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK sends a 200 with v as the body.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// NoContent sends a bare 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error sends {"error": reason} with the given status.
func Error(w http.ResponseWriter, status int, reason string) {
	Write(w, status, map[string]string{"error": reason})
}

// Shorthands for Error with a fixed status.
func BadRequest(w http.ResponseWriter, reason string)   { Error(w, http.StatusBadRequest, reason) }
func Unauthorized(w http.ResponseWriter, reason string) { Error(w, http.StatusUnauthorized, reason) }
func Forbidden(w http.ResponseWriter, reason string)    { Error(w, http.StatusForbidden, reason) }
func NotFound(w http.ResponseWriter, reason string)     { Error(w, http.StatusNotFound, reason) }
func Conflict(w http.ResponseWriter, reason string)     { Error(w, http.StatusConflict, reason) }
func TooLarge(w http.ResponseWriter, reason string)     { Error(w, http.StatusRequestEntityTooLarge, reason) }

// Unprocessable sends a 422, used when the request is well formed but its
// referenced resource is unusable.
func Unprocessable(w http.ResponseWriter, reason string) {
	Error(w, http.StatusUnprocessableEntity, reason)
}

// InternalError sends a 500. Log the cause separately; reason should stay
// generic.
func InternalError(w http.ResponseWriter, reason string) {
	Error(w, http.StatusInternalServerError, reason)
}

// ValidationError sends a 400 listing the fields that failed and why.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	Write(w, http.StatusBadRequest, map[string]any{
		"error":  ValidationReason,
		"fields": fields,
	})
}

// ReadBody reads at most limit bytes of the request body. Larger bodies
// yield ErrTooLarge.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, ErrTooLarge
		}
		return nil, err
	}
	return body, nil
}

// Decode reads a body of at most limit bytes and unmarshals it into v.
func Decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body, err := ReadBody(w, r, limit)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
