package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoMatch is returned when TMDB has no candidate for a title/year query.
var ErrNoMatch = errors.New("no match found")

// Enrichment bundles the remote-sourced fields applied to a catalog entry
// after a successful match.
type Enrichment struct {
	TMDBID      int64
	Title       string
	Year        int
	PosterPath  string
	Rating      float64
	Overview    string
	Director    string
	Cast        string
	ReleaseDate string
	Genres      string
}

// Matcher reconciles local files against TMDB.
type Matcher struct {
	client *Client
}

// NewMatcher creates a Matcher backed by the given TMDB client.
func NewMatcher(client *Client) *Matcher {
	return &Matcher{client: client}
}

// Match searches TMDB for the given title and optional year and returns the
// best candidate's TMDB id. Returns ErrNoMatch when the search comes back
// empty.
func (m *Matcher) Match(ctx context.Context, title string, year int) (int64, error) {
	hit, err := m.client.SearchMovie(ctx, title, year)
	if err != nil {
		return 0, err
	}
	if hit == nil {
		return 0, ErrNoMatch
	}
	return int64(hit.ID), nil
}

// FetchFull retrieves the complete metadata bundle for a matched candidate.
func (m *Matcher) FetchFull(ctx context.Context, candidateID int64) (*Enrichment, error) {
	details, err := m.client.GetMovieDetails(ctx, int(candidateID))
	if err != nil {
		return nil, err
	}

	credits, err := m.client.GetMovieCredits(ctx, int(candidateID))
	if err != nil {
		return nil, err
	}

	var genres []string
	for _, genre := range details.Genres {
		genres = append(genres, genre.Name)
	}

	var directors []string
	for _, crew := range credits.Crew {
		if crew.Job == "Director" {
			directors = append(directors, crew.Name)
		}
	}

	// Top-billed cast only
	var cast []string
	for i, member := range credits.Cast {
		if i >= 5 {
			break
		}
		cast = append(cast, member.Name)
	}

	year := 0
	if len(details.ReleaseDate) >= 4 {
		year, _ = strconv.Atoi(details.ReleaseDate[:4])
	}

	return &Enrichment{
		TMDBID:      int64(details.ID),
		Title:       details.Title,
		Year:        year,
		PosterPath:  details.PosterPath,
		Rating:      details.VoteAverage,
		Overview:    details.Overview,
		Director:    strings.Join(directors, ", "),
		Cast:        strings.Join(cast, ", "),
		ReleaseDate: details.ReleaseDate,
		Genres:      strings.Join(genres, ", "),
	}, nil
}

// String implements fmt.Stringer for log output.
func (e *Enrichment) String() string {
	return fmt.Sprintf("%s (%d) tmdb=%d", e.Title, e.Year, e.TMDBID)
}
