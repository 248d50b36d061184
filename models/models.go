package models

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Movie is a row of the movies table. The validate tags are the invariants
// every write must satisfy.
type Movie struct {
	ID     int64    `gorm:"primaryKey;autoIncrement"`
	Title  string   `gorm:"size:200;not null" validate:"required,min=1,max=200"`
	Year   int      `gorm:"not null" validate:"gte=1888,lte=2100"`
	Genre  string   `gorm:"size:80;not null" validate:"required,min=1,max=80"`
	Rating *float64 `validate:"omitnil,gte=0,lte=10"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// MovieCreate is the body of POST /api/movies.
type MovieCreate struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genre  string   `json:"genre"`
	Rating *float64 `json:"rating"`
}

// UnmarshalJSON decodes the body. year may be written as a whole float
// (2021.0).
func (c *MovieCreate) UnmarshalJSON(data []byte) error {
	var aux struct {
		Title  string      `json:"title"`
		Year   json.Number `json:"year"`
		Genre  string      `json:"genre"`
		Rating *float64    `json:"rating"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	year, err := wholeNumber(aux.Year)
	if err != nil {
		return err
	}

	*c = MovieCreate{Title: aux.Title, Year: year, Genre: aux.Genre, Rating: aux.Rating}
	return nil
}

// Movie builds the row to insert. The id is assigned by storage.
func (c MovieCreate) Movie() *Movie {
	return &Movie{
		Title:  c.Title,
		Year:   c.Year,
		Genre:  c.Genre,
		Rating: c.Rating,
	}
}

// MovieUpdate is the body of PUT /api/movies/{id}. Nil fields were absent
// from the request. RatingSet records whether "rating" was present at all, so
// an explicit null clears the rating while an absent key leaves it alone.
type MovieUpdate struct {
	Title     *string  `json:"title"`
	Year      *int     `json:"year"`
	Genre     *string  `json:"genre"`
	Rating    *float64 `json:"rating"`
	RatingSet bool     `json:"-"`
}

// UnmarshalJSON decodes the update and records which keys were present.
func (u *MovieUpdate) UnmarshalJSON(data []byte) error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}

	var aux struct {
		Title  *string      `json:"title"`
		Year   *json.Number `json:"year"`
		Genre  *string      `json:"genre"`
		Rating *float64     `json:"rating"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*u = MovieUpdate{Title: aux.Title, Genre: aux.Genre, Rating: aux.Rating}
	if aux.Year != nil {
		year, err := wholeNumber(*aux.Year)
		if err != nil {
			return err
		}
		u.Year = &year
	}
	_, u.RatingSet = present["rating"]
	return nil
}

// wholeNumber converts a JSON number with no fractional part to an int.
// An absent number is zero.
func wholeNumber(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(string(n)); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("year: %q is not a whole number", n)
	}
	return int(f), nil
}

// Empty reports whether the update changes nothing.
func (u MovieUpdate) Empty() bool {
	return u.Title == nil && u.Year == nil && u.Genre == nil && !u.RatingSet
}

// Apply copies the supplied fields onto m.
func (u MovieUpdate) Apply(m *Movie) {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Year != nil {
		m.Year = *u.Year
	}
	if u.Genre != nil {
		m.Genre = *u.Genre
	}
	if u.RatingSet {
		m.Rating = u.Rating
	}
}

// Columns returns the column assignments for the supplied fields only.
// A cleared rating maps to a nil value, which is written as NULL.
func (u MovieUpdate) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Year != nil {
		cols["year"] = *u.Year
	}
	if u.Genre != nil {
		cols["genre"] = *u.Genre
	}
	if u.RatingSet {
		if u.Rating == nil {
			cols["rating"] = nil
		} else {
			cols["rating"] = *u.Rating
		}
	}
	return cols
}

// MovieOut is the response representation of a movie.
type MovieOut struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genre  string   `json:"genre"`
	Rating *float64 `json:"rating"`
}

// NewMovieOut copies the attributes of a stored movie.
func NewMovieOut(m *Movie) MovieOut {
	return MovieOut{
		ID:     m.ID,
		Title:  m.Title,
		Year:   m.Year,
		Genre:  m.Genre,
		Rating: m.Rating,
	}
}

// NewMovieOutList maps rows to their response shape, preserving order.
// The result is never nil so it encodes as [] rather than null.
func NewMovieOutList(movies []Movie) []MovieOut {
	out := make([]MovieOut, 0, len(movies))
	for i := range movies {
		out = append(out, NewMovieOut(&movies[i]))
	}
	return out
}
