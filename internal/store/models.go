package store

import (
	"time"
)

// Movie represents one cataloged library entry. The integer ID is the
// stable identity; FilePath is unique across the library.
type Movie struct {
	ID            int64
	FilePath      string
	Title         string
	Year          *int
	Rating        *int // user rating, 0-5
	Notes         *string
	Watched       bool
	Favorite      bool
	ThumbnailPath *string
	FileSize      *int64
	Duration      *float64 // seconds
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Remote-sourced descriptive fields
	TMDBID      *int64
	PosterPath  *string
	TMDBRating  *float64
	Overview    *string
	Director    *string
	Cast        *string
	ReleaseDate *string
	Genres      *string
}

// MoviePatch is a partial update: nil fields are left untouched.
// Invalid values (non-finite floats, out-of-range ratings) are dropped
// rather than rejected.
type MoviePatch struct {
	Title         *string
	Year          *int
	Rating        *int
	Notes         *string
	Watched       *bool
	Favorite      *bool
	ThumbnailPath *string
	Duration      *float64

	TMDBID      *int64
	PosterPath  *string
	TMDBRating  *float64
	Overview    *string
	Director    *string
	Cast        *string
	ReleaseDate *string
	Genres      *string
}
