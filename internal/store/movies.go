package store

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
)

// movieColumns is the standard SELECT list for movies
const movieColumns = `id, file_path, title, year, rating, notes, watched, favorite,
	thumbnail_path, file_size, duration_seconds, created_at, updated_at,
	tmdb_id, poster_path, tmdb_rating, overview, director, cast_list, release_date, genres`

func scanMovie(row interface{ Scan(dest ...interface{}) error }) (*Movie, error) {
	m := &Movie{}
	err := row.Scan(
		&m.ID, &m.FilePath, &m.Title, &m.Year, &m.Rating, &m.Notes,
		&m.Watched, &m.Favorite, &m.ThumbnailPath, &m.FileSize, &m.Duration,
		&m.CreatedAt, &m.UpdatedAt,
		&m.TMDBID, &m.PosterPath, &m.TMDBRating, &m.Overview, &m.Director,
		&m.Cast, &m.ReleaseDate, &m.Genres,
	)
	return m, err
}

// FindByPath returns the movie cataloged at the exact file path, or nil
// if no such entry exists.
func (s *Store) FindByPath(path string) (*Movie, error) {
	row := s.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE file_path = ?`, path)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie by path: %w", err)
	}
	return m, nil
}

// Get returns the movie with the given id, or nil if it does not exist.
func (s *Store) Get(id int64) (*Movie, error) {
	row := s.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie: %w", err)
	}
	return m, nil
}

// Insert catalogs a new movie and fills in its store-assigned ID and
// timestamps. Returns ErrDuplicatePath if the file path is already taken.
func (s *Store) Insert(m *Movie) error {
	query := `INSERT INTO movies (
			file_path, title, year, rating, notes, watched, favorite,
			thumbnail_path, file_size, duration_seconds,
			tmdb_id, poster_path, tmdb_rating, overview, director, cast_list, release_date, genres
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(query,
		m.FilePath, m.Title, m.Year, m.Rating, m.Notes, m.Watched, m.Favorite,
		m.ThumbnailPath, m.FileSize, m.Duration,
		m.TMDBID, m.PosterPath, m.TMDBRating, m.Overview, m.Director,
		m.Cast, m.ReleaseDate, m.Genres,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePath
		}
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of patch to the movie with the given
// id and returns the updated row. Invalid values in the patch are dropped
// silently rather than erroring.
func (s *Store) Update(id int64, patch MoviePatch) (*Movie, error) {
	var sets []string
	var args []interface{}

	set := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = ?", col))
		args = append(args, v)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Year != nil {
		set("year", *patch.Year)
	}
	if patch.Rating != nil && *patch.Rating >= 0 && *patch.Rating <= 5 {
		set("rating", *patch.Rating)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.Watched != nil {
		set("watched", *patch.Watched)
	}
	if patch.Favorite != nil {
		set("favorite", *patch.Favorite)
	}
	if patch.ThumbnailPath != nil {
		set("thumbnail_path", *patch.ThumbnailPath)
	}
	if patch.Duration != nil && isFinite(*patch.Duration) {
		set("duration_seconds", *patch.Duration)
	}
	if patch.TMDBID != nil {
		set("tmdb_id", *patch.TMDBID)
	}
	if patch.PosterPath != nil {
		set("poster_path", *patch.PosterPath)
	}
	if patch.TMDBRating != nil && isFinite(*patch.TMDBRating) {
		set("tmdb_rating", *patch.TMDBRating)
	}
	if patch.Overview != nil {
		set("overview", *patch.Overview)
	}
	if patch.Director != nil {
		set("director", *patch.Director)
	}
	if patch.Cast != nil {
		set("cast_list", *patch.Cast)
	}
	if patch.ReleaseDate != nil {
		set("release_date", *patch.ReleaseDate)
	}
	if patch.Genres != nil {
		set("genres", *patch.Genres)
	}

	if len(sets) == 0 {
		return s.Get(id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	if _, err := s.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	return s.Get(id)
}

// Delete removes a movie from the catalog.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM movies WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

// List returns all cataloged movies ordered by title.
func (s *Store) List() ([]*Movie, error) {
	rows, err := s.db.Query(`SELECT ` + movieColumns + ` FROM movies ORDER BY title, file_path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
