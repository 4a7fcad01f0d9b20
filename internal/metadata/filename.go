package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Resolution markers must be stripped before year detection so "1080p"
	// never contributes a bogus "1080" token.
	resolutionPattern = regexp.MustCompile(`(?i)\b(2160p|1080p|1080i|720p|720i|480p|4K)\b`)
	qualityPattern    = regexp.MustCompile(`(?i)\b(BluRay|BRRip|BDRip|WEB-DL|WEBRip|HDRip|DVDRip|HDTV|CAM|DVDSCR|SCREENER)\b`)
	codecPattern      = regexp.MustCompile(`(?i)\b(x264|x265|H\.?264|H\.?265|HEVC|XviD|DivX|AVC)\b`)
	audioPattern      = regexp.MustCompile(`(?i)\b(AAC|AC3|DTS|DD5\.1|TrueHD|Atmos|DTS-HD|MA|FLAC)\b`)
	languagePattern   = regexp.MustCompile(`(?i)\b(ita|eng|spa|fra|deu|jpn|kor|rus|chi|por|multi|dual)\b`)
	subtitlePattern   = regexp.MustCompile(`(?i)\b(sub|subs|subtitle|subtitles|subbed)\b`)
	editionPattern    = regexp.MustCompile(`(?i)\b(EXTENDED|UNRATED|DIRECTOR.?S.?CUT|REMASTERED|THEATRICAL|IMAX|CUT|UHD|HDR|HDR10)\b`)
	bracketPattern    = regexp.MustCompile(`\[([^\]]+)\]`)
	delimiterPattern  = regexp.MustCompile(`[.\s_-]+`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// ParseFilename derives a search candidate (title, year) from a video file
// base name (extension already stripped). A year is recognized only when it
// is distinguishable from the title: bracketed, parenthesized, or a
// delimiter-separated 4-digit token that is not the leading token. When no
// confident year token exists the year is 0 and only the title is returned.
func ParseFilename(name string) (title string, year int) {
	// Strip resolution markers first
	cleaned := resolutionPattern.ReplaceAllString(name, " ")

	tokens := delimiterPattern.Split(cleaned, -1)

	yearIdx := -1
	for i, tok := range tokens {
		y, bracketed := yearToken(tok)
		if y == 0 {
			continue
		}
		// A leading bare number reads as a title ("1917", "2012"), so it
		// only counts as a year when bracketed.
		if i == 0 && !bracketed {
			continue
		}
		yearIdx = i
		year = y
	}

	if yearIdx > 0 {
		// Release names put the year between title and quality junk;
		// everything from the year on is dropped.
		tokens = tokens[:yearIdx]
	} else if yearIdx == 0 {
		tokens = tokens[1:]
	}

	title = strings.Join(tokens, " ")
	title = qualityPattern.ReplaceAllString(title, " ")
	title = codecPattern.ReplaceAllString(title, " ")
	title = audioPattern.ReplaceAllString(title, " ")
	title = languagePattern.ReplaceAllString(title, " ")
	title = subtitlePattern.ReplaceAllString(title, " ")
	title = editionPattern.ReplaceAllString(title, " ")
	title = bracketPattern.ReplaceAllString(title, " ")
	title = strings.NewReplacer("(", " ", ")", " ").Replace(title)
	title = strings.TrimSpace(spacePattern.ReplaceAllString(title, " "))

	if title == "" {
		// Nothing usable remained; fall back to the raw name so the
		// caller always has something to search with.
		title = strings.TrimSpace(spacePattern.ReplaceAllString(delimiterPattern.ReplaceAllString(name, " "), " "))
		year = 0
	}

	return title, year
}

// yearToken reports whether tok is a plausible 4-digit release year,
// optionally wrapped in parentheses or square brackets.
func yearToken(tok string) (year int, bracketed bool) {
	if len(tok) >= 2 {
		if (tok[0] == '(' && tok[len(tok)-1] == ')') || (tok[0] == '[' && tok[len(tok)-1] == ']') {
			tok = tok[1 : len(tok)-1]
			bracketed = true
		}
	}
	if len(tok) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(tok)
	if err != nil || y < 1900 || y > 2099 {
		return 0, false
	}
	return y, bracketed
}
