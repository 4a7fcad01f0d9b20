package library

import (
	"testing"

	"github.com/olivier-w/libcat/internal/store"
)

func TestExtractQualityInfo(t *testing.T) {
	tests := []struct {
		fileName       string
		wantResolution string
		wantSource     string
	}{
		{"The.Matrix.1999.1080p.BluRay.x264.mkv", "1080p", "BluRay"},
		{"The.Matrix.1999.2160p.WEB-DL.mkv", "2160p", "WEB-DL"},
		{"The.Matrix.1999.4K.HDRip.mkv", "2160p", "HDRip"},
		{"The.Matrix.1999.DVDRip.avi", "", "DVDRip"},
		{"The Matrix (1999).mp4", "", ""},
	}

	for _, tt := range tests {
		res, src := extractQualityInfo(tt.fileName)
		if res != tt.wantResolution || src != tt.wantSource {
			t.Errorf("extractQualityInfo(%q) = (%q, %q), want (%q, %q)",
				tt.fileName, res, src, tt.wantResolution, tt.wantSource)
		}
	}
}

func TestQualityScoreRanksResolutionFirst(t *testing.T) {
	uhdWeb := qualityScore("2160p", "WEB-DL")
	fhdBluray := qualityScore("1080p", "BluRay")
	if uhdWeb <= fhdBluray {
		t.Errorf("2160p WEB-DL (%d) should outrank 1080p BluRay (%d)", uhdWeb, fhdBluray)
	}
}

func TestFindDuplicatesGroupsByTMDBIDAndTitleYear(t *testing.T) {
	st := newFakeStore()
	svc := New(Config{})
	svc.Bind(st, &fakeThumbs{}, nil)

	matrixID := int64(603)
	year := 1995
	for _, path := range []string{
		"/v/The.Matrix.1999.1080p.BluRay.mkv",
		"/v/The.Matrix.1999.720p.WEBRip.mkv",
	} {
		m := &store.Movie{FilePath: path, Title: "The Matrix", TMDBID: &matrixID}
		if err := st.Insert(m); err != nil {
			t.Fatal(err)
		}
	}
	for _, path := range []string{
		"/v/Heat.1995.2160p.WEB-DL.mkv",
		"/v/Heat.1995.DVDRip.avi",
	} {
		m := &store.Movie{FilePath: path, Title: "Heat", Year: &year}
		if err := st.Insert(m); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.Insert(&store.Movie{FilePath: "/v/unique.mp4", Title: "unique"}); err != nil {
		t.Fatal(err)
	}

	sets, err := svc.FindDuplicates()
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 duplicate sets, got %d", len(sets))
	}

	byType := make(map[string]DuplicateSet)
	for _, set := range sets {
		byType[set.KeyType] = set
	}

	tmdbSet, ok := byType["tmdb_id"]
	if !ok {
		t.Fatal("expected a tmdb_id keyed set")
	}
	if tmdbSet.Key != "603" || len(tmdbSet.Entries) != 2 {
		t.Errorf("unexpected tmdb set: key=%q entries=%d", tmdbSet.Key, len(tmdbSet.Entries))
	}
	assertRecommended(t, tmdbSet.Entries, "/v/The.Matrix.1999.1080p.BluRay.mkv")

	tySet, ok := byType["title_year"]
	if !ok {
		t.Fatal("expected a title_year keyed set")
	}
	if tySet.Key != "heat|1995" {
		t.Errorf("unexpected title_year key %q", tySet.Key)
	}
	assertRecommended(t, tySet.Entries, "/v/Heat.1995.2160p.WEB-DL.mkv")
}

func assertRecommended(t *testing.T, entries []DuplicateEntry, wantPath string) {
	t.Helper()
	count := 0
	for _, e := range entries {
		if e.Recommended {
			count++
			if e.Movie.FilePath != wantPath {
				t.Errorf("recommended %s, want %s", e.Movie.FilePath, wantPath)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one recommended entry, got %d", count)
	}
}

func TestFindDuplicatesRequiresWorkspace(t *testing.T) {
	svc := New(Config{})
	if _, err := svc.FindDuplicates(); err != ErrNotReady {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}
