package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/icco/movies/lib/db"
	"github.com/icco/movies/lib/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Response details.
const (
	detailMovieNotFound  = "Movie not found"
	detailInternalError  = "Internal Server Error"
	detailBodyTooLarge   = "Request body too large"
	detailBodyUnreadable = "Failed to read request body"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

// readBody reads the request body, enforcing maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// movieID parses the {id} path parameter.
func movieID(r *http.Request) (int64, *validation.RequestValidationError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, validation.NewError(
			[]string{"path", "movie_id"},
			"Input should be a valid integer, unable to parse string as an integer",
			"int_parsing",
		)
	}
	return id, nil
}

// writeStoreError maps a store error to its response: 404 for a missing
// movie, 422 for a row that fails validation and 500 for anything else.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.Is(err, db.ErrNotFound):
		validation.WriteDetail(w, detailMovieNotFound, http.StatusNotFound)
	case errors.As(err, &verr):
		validation.WriteError(w, verr, http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(r.Context(), msg, slog.Any("error", err))
		validation.WriteDetail(w, detailInternalError, http.StatusInternalServerError)
	}
}

// writeBodyError answers a body that could not be read.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		validation.WriteDetail(w, detailBodyTooLarge, http.StatusRequestEntityTooLarge)
		return
	}
	slog.WarnContext(r.Context(), "Failed to read request body", slog.Any("error", err))
	validation.WriteDetail(w, detailBodyUnreadable, http.StatusBadRequest)
}
