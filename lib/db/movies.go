package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no movie has the requested id.
var ErrNotFound = errors.New("movie not found")

// Store persists movies. Each call runs on a session bound to ctx, so the
// connection is returned to the pool when the call returns.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping verifies the database answers a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// Create inserts m and returns the stored row with its assigned id.
func (s *Store) Create(ctx context.Context, m *models.Movie) (*models.Movie, error) {
	if verr := validation.ValidateStruct(m); verr != nil {
		return nil, verr
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	return s.Get(ctx, m.ID)
}

// List returns every movie, most recently created first.
func (s *Store) List(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// Get returns the movie with the given id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*models.Movie, error) {
	return get(s.db.WithContext(ctx), id)
}

// Update applies the supplied fields of u to the movie with the given id and
// returns the row as stored afterwards.
func (s *Store) Update(ctx context.Context, id int64, u models.MovieUpdate) (*models.Movie, error) {
	var updated *models.Movie

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := get(tx, id)
		if err != nil {
			return err
		}

		u.Apply(m)
		if verr := validation.ValidateStruct(m); verr != nil {
			return verr
		}

		if !u.Empty() {
			if err := tx.Model(&models.Movie{}).Where("id = ?", id).Updates(u.Columns()).Error; err != nil {
				return fmt.Errorf("failed to update movie %d: %w", id, err)
			}
		}

		updated, err = get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the movie with the given id or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Movie{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func get(tx *gorm.DB, id int64) (*models.Movie, error) {
	var m models.Movie
	if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	return &m, nil
}
