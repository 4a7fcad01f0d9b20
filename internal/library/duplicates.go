package library

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/olivier-w/libcat/internal/store"
)

// Quality extraction patterns for duplicate ranking
var (
	resolutionExtractPattern = regexp.MustCompile(`(?i)\b(2160p|1080p|1080i|720p|720i|480p|4K)\b`)
	sourceExtractPattern     = regexp.MustCompile(`(?i)\b(BluRay|BRRip|BDRip|WEB-DL|WEBRip|HDRip|DVDRip|HDTV|WEB|CAM|TS|TC|DVDSCR|R5|SCREENER)\b`)
)

// Resolution quality ranking (higher is better)
var resolutionRank = map[string]int{
	"2160p": 4,
	"1080p": 3,
	"1080i": 2,
	"720p":  2,
	"720i":  1,
	"480p":  1,
	"":      0,
}

// Source quality ranking (higher is better)
var sourceRank = map[string]int{
	"bluray":   8,
	"bdrip":    7,
	"brrip":    7,
	"web-dl":   6,
	"webrip":   5,
	"hdrip":    4,
	"hdtv":     4,
	"dvdrip":   3,
	"dvdscr":   2,
	"screener": 2,
	"r5":       2,
	"ts":       1,
	"tc":       1,
	"cam":      0,
	"":         0,
}

// DuplicateSet groups catalog entries that appear to be copies of the same
// movie, keyed by TMDB id when known, otherwise by lowercase title + year.
type DuplicateSet struct {
	Key     string
	KeyType string // "tmdb_id" or "title_year"
	Entries []DuplicateEntry
}

// DuplicateEntry is one copy within a set, ranked by the quality markers
// in its file name.
type DuplicateEntry struct {
	Movie        *store.Movie
	Resolution   string
	Source       string
	QualityScore int
	Recommended  bool
}

// FindDuplicates groups the cataloged movies into duplicate sets and marks
// the highest quality copy of each set as recommended.
func (s *Service) FindDuplicates() ([]DuplicateSet, error) {
	st, _, _ := s.collaborators()
	if st == nil {
		return nil, ErrNotReady
	}

	movies, err := st.List()
	if err != nil {
		return nil, err
	}

	tmdbGroups := make(map[int64][]DuplicateEntry)
	titleYearGroups := make(map[string][]DuplicateEntry)

	for _, m := range movies {
		entry := newDuplicateEntry(m)
		if m.TMDBID != nil && *m.TMDBID > 0 {
			tmdbGroups[*m.TMDBID] = append(tmdbGroups[*m.TMDBID], entry)
			continue
		}
		year := 0
		if m.Year != nil {
			year = *m.Year
		}
		key := fmt.Sprintf("%s|%d", strings.ToLower(m.Title), year)
		titleYearGroups[key] = append(titleYearGroups[key], entry)
	}

	var sets []DuplicateSet
	for tmdbID, entries := range tmdbGroups {
		if len(entries) > 1 {
			markRecommended(entries)
			sets = append(sets, DuplicateSet{
				Key:     fmt.Sprintf("%d", tmdbID),
				KeyType: "tmdb_id",
				Entries: entries,
			})
		}
	}
	for key, entries := range titleYearGroups {
		if len(entries) > 1 {
			markRecommended(entries)
			sets = append(sets, DuplicateSet{
				Key:     key,
				KeyType: "title_year",
				Entries: entries,
			})
		}
	}

	return sets, nil
}

func newDuplicateEntry(m *store.Movie) DuplicateEntry {
	fileName := filepath.Base(m.FilePath)
	resolution, source := extractQualityInfo(fileName)
	return DuplicateEntry{
		Movie:        m,
		Resolution:   resolution,
		Source:       source,
		QualityScore: qualityScore(resolution, source),
	}
}

// markRecommended marks the highest quality copy in a set.
func markRecommended(entries []DuplicateEntry) {
	if len(entries) == 0 {
		return
	}
	bestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].QualityScore > entries[bestIdx].QualityScore {
			bestIdx = i
		}
	}
	entries[bestIdx].Recommended = true
}

// extractQualityInfo pulls resolution and source markers from a filename.
func extractQualityInfo(fileName string) (resolution string, source string) {
	if match := resolutionExtractPattern.FindString(fileName); match != "" {
		resolution = strings.ToLower(match)
		if resolution == "4k" {
			resolution = "2160p"
		}
	}
	if match := sourceExtractPattern.FindString(fileName); match != "" {
		source = match
	}
	return resolution, source
}

// qualityScore ranks resolution above source so a 2160p WEB-DL beats a
// 1080p BluRay.
func qualityScore(resolution, source string) int {
	return resolutionRank[strings.ToLower(resolution)]*10 + sourceRank[strings.ToLower(source)]
}
