package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// memCache is a map-backed Cache for tests.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (m *memCache) Get(key string) ([]byte, bool) {
	data, ok := m.entries[key]
	return data, ok
}

func (m *memCache) Set(key string, data []byte, ttl time.Duration) error {
	m.entries[key] = data
	return nil
}

func (m *memCache) Clear() error {
	m.entries = make(map[string][]byte)
	return nil
}

func (m *memCache) Close() error { return nil }

func newStubServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("api_key") == "" {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		query := r.URL.Query().Get("query")
		if query != "Inception" {
			fmt.Fprint(w, `{"page":1,"results":[],"total_pages":0,"total_results":0}`)
			return
		}
		fmt.Fprint(w, `{"page":1,"results":[
			{"id":27205,"title":"Inception","release_date":"2010-07-15","vote_average":8.4}
		],"total_pages":1,"total_results":1}`)
	})

	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"id":27205,"title":"Inception","overview":"A thief who steals corporate secrets.",
			"poster_path":"/inception.jpg","release_date":"2010-07-15","runtime":148,"vote_average":8.4,
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`)
	})

	mux.HandleFunc("/movie/27205/credits", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"id":27205,
			"cast":[
				{"id":1,"name":"Leonardo DiCaprio","order":0},
				{"id":2,"name":"Joseph Gordon-Levitt","order":1},
				{"id":3,"name":"Elliot Page","order":2},
				{"id":4,"name":"Tom Hardy","order":3},
				{"id":5,"name":"Ken Watanabe","order":4},
				{"id":6,"name":"Cillian Murphy","order":5}
			],
			"crew":[
				{"id":10,"name":"Christopher Nolan","job":"Director","department":"Directing"},
				{"id":11,"name":"Hans Zimmer","job":"Original Music Composer","department":"Sound"}
			]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestMatcher(t *testing.T, requests *atomic.Int64, c *memCache) *Matcher {
	srv := newStubServer(t, requests)
	cfg := ClientConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		MaxAttempts: 1,
	}
	if c != nil {
		cfg.Cache = c
	}
	return NewMatcher(NewClient(cfg))
}

func TestMatchReturnsCandidateID(t *testing.T) {
	var requests atomic.Int64
	m := newTestMatcher(t, &requests, nil)

	id, err := m.Match(context.Background(), "Inception", 2010)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if id != 27205 {
		t.Errorf("expected candidate 27205, got %d", id)
	}
}

func TestMatchNoResults(t *testing.T) {
	var requests atomic.Int64
	m := newTestMatcher(t, &requests, nil)

	_, err := m.Match(context.Background(), "random clip", 0)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestFetchFullAssemblesEnrichment(t *testing.T) {
	var requests atomic.Int64
	m := newTestMatcher(t, &requests, nil)

	enr, err := m.FetchFull(context.Background(), 27205)
	if err != nil {
		t.Fatalf("FetchFull failed: %v", err)
	}

	if enr.TMDBID != 27205 || enr.Title != "Inception" {
		t.Errorf("unexpected identity: %+v", enr)
	}
	if enr.Year != 2010 {
		t.Errorf("expected year parsed from release date, got %d", enr.Year)
	}
	if enr.Director != "Christopher Nolan" {
		t.Errorf("expected director filtered from crew, got %q", enr.Director)
	}
	want := "Leonardo DiCaprio, Joseph Gordon-Levitt, Elliot Page, Tom Hardy, Ken Watanabe"
	if enr.Cast != want {
		t.Errorf("expected top-billed cast only, got %q", enr.Cast)
	}
	if enr.Genres != "Action, Science Fiction" {
		t.Errorf("unexpected genres %q", enr.Genres)
	}
	if enr.PosterPath != "/inception.jpg" || enr.Rating != 8.4 {
		t.Errorf("unexpected poster/rating: %+v", enr)
	}
}

func TestSearchUsesCache(t *testing.T) {
	var requests atomic.Int64
	m := newTestMatcher(t, &requests, newMemCache())

	for i := 0; i < 3; i++ {
		if _, err := m.Match(context.Background(), "Inception", 2010); err != nil {
			t.Fatalf("Match %d failed: %v", i, err)
		}
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("expected 1 upstream request, got %d", n)
	}
}

func TestMatchSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Internal error"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	m := NewMatcher(NewClient(ClientConfig{
		APIKey:           "test-key",
		BaseURL:          srv.URL,
		MaxAttempts:      2,
		InitialBackoffMs: 1,
	}))

	_, err := m.Match(context.Background(), "Inception", 2010)
	if err == nil {
		t.Fatal("expected error from failing upstream")
	}
	if errors.Is(err, ErrNoMatch) {
		t.Error("server failure must not be reported as a missing match")
	}
}
