package validation

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// FieldError describes one failed constraint. Loc is the path to the value,
// e.g. ["body", "year"] or ["path", "movie_id"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// RequestValidationError collects every constraint a request violated.
type RequestValidationError struct {
	errors []FieldError
}

// NewError returns a validation error with a single entry.
func NewError(loc []string, msg, typ string) *RequestValidationError {
	return &RequestValidationError{errors: []FieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

// Errors returns the individual field errors ordered by location.
func (e *RequestValidationError) Errors() []FieldError {
	return e.errors
}

func (e *RequestValidationError) Error() string {
	if len(e.errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.errors))
	for _, fe := range e.errors {
		msgs = append(msgs, strings.Join(fe.Loc, ".")+": "+fe.Msg)
	}
	return strings.Join(msgs, "; ")
}

func (e *RequestValidationError) sort() {
	sort.SliceStable(e.errors, func(i, j int) bool {
		return strings.Join(e.errors[i].Loc, ".") < strings.Join(e.errors[j].Loc, ".")
	})
}

// WriteError writes {"detail": ...} with the given status. Validation errors
// are written as their list of field errors, anything else as its message.
func WriteError(w http.ResponseWriter, err error, status int) {
	var verr *RequestValidationError
	if errors.As(err, &verr) {
		writeDetail(w, verr.Errors(), status)
		return
	}
	writeDetail(w, err.Error(), status)
}

// WriteDetail writes {"detail": msg} with the given status.
func WriteDetail(w http.ResponseWriter, msg string, status int) {
	writeDetail(w, msg, status)
}

func writeDetail(w http.ResponseWriter, detail any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"detail": detail,
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
