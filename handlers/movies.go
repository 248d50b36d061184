package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
)

// MovieStore is the storage the movie handlers need.
type MovieStore interface {
	Create(ctx context.Context, m *models.Movie) (*models.Movie, error)
	List(ctx context.Context) ([]models.Movie, error)
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Update(ctx context.Context, id int64, u models.MovieUpdate) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// HandleListMovies returns every movie, newest first.
func HandleListMovies(store MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movies, err := store.List(r.Context())
		if err != nil {
			writeStoreError(w, r, err, "Failed to list movies")
			return
		}
		writeJSON(w, models.NewMovieOutList(movies), http.StatusOK)
	}
}

func HandleGetMovie(store MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, verr := movieID(r)
		if verr != nil {
			validation.WriteError(w, verr, http.StatusUnprocessableEntity)
			return
		}

		m, err := store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err, "Failed to get movie")
			return
		}
		writeJSON(w, models.NewMovieOut(m), http.StatusOK)
	}
}

// HandleCreateMovie validates the body and inserts a movie. Invalid bodies
// are answered with 422 before storage is touched.
func HandleCreateMovie(store MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeBodyError(w, r, err)
			return
		}

		if verr := validation.ValidateMovieCreate(body); verr != nil {
			validation.WriteError(w, verr, http.StatusUnprocessableEntity)
			return
		}

		var in models.MovieCreate
		if err := json.Unmarshal(body, &in); err != nil {
			validation.WriteError(w, validation.NewError([]string{"body"}, err.Error(), "json_invalid"), http.StatusUnprocessableEntity)
			return
		}

		m, err := store.Create(r.Context(), in.Movie())
		if err != nil {
			writeStoreError(w, r, err, "Failed to create movie")
			return
		}

		slog.InfoContext(r.Context(), "Created movie", slog.Int64("id", m.ID), slog.String("title", m.Title))
		writeJSON(w, models.NewMovieOut(m), http.StatusCreated)
	}
}

// HandleUpdateMovie applies a partial update. Keys absent from the body keep
// their stored values; "rating": null clears the rating.
func HandleUpdateMovie(store MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, verr := movieID(r)
		if verr != nil {
			validation.WriteError(w, verr, http.StatusUnprocessableEntity)
			return
		}

		body, err := readBody(w, r)
		if err != nil {
			writeBodyError(w, r, err)
			return
		}

		if verr := validation.ValidateMovieUpdate(body); verr != nil {
			validation.WriteError(w, verr, http.StatusUnprocessableEntity)
			return
		}

		var u models.MovieUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			validation.WriteError(w, validation.NewError([]string{"body"}, err.Error(), "json_invalid"), http.StatusUnprocessableEntity)
			return
		}

		m, err := store.Update(r.Context(), id, u)
		if err != nil {
			writeStoreError(w, r, err, "Failed to update movie")
			return
		}
		writeJSON(w, models.NewMovieOut(m), http.StatusOK)
	}
}

func HandleDeleteMovie(store MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, verr := movieID(r)
		if verr != nil {
			validation.WriteError(w, verr, http.StatusUnprocessableEntity)
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			writeStoreError(w, r, err, "Failed to delete movie")
			return
		}

		slog.InfoContext(r.Context(), "Deleted movie", slog.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
