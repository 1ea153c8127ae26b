package chapters

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/ydl-music/internal/model"
)

// Source tells where a resolved chapter list came from.
type Source int

const (
	// SourceVideo means the video's own chapter markers were used.
	SourceVideo Source = iota

	// SourceCustom means a caller-supplied list replaced the video's.
	SourceCustom

	// SourcePlaceholder means the video had no chapters and a single empty
	// chapter stands for the whole video.
	SourcePlaceholder
)

func (s Source) String() string {
	switch s {
	case SourceVideo:
		return "video"
	case SourceCustom:
		return "custom"
	case SourcePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Chapters []model.Chapter
	Source   Source
}

// Resolve picks the chapter list for a video. A non-empty custom list wins
// unconditionally; callers validate it first. Otherwise the video's own
// chapters are used, and failing that a single placeholder chapter.
func Resolve(info *model.VideoInfo, custom []model.Chapter) Resolution {
	if len(custom) > 0 {
		return Resolution{Chapters: custom, Source: SourceCustom}
	}
	if info != nil && info.HasChapters() {
		return Resolution{Chapters: info.Chapters, Source: SourceVideo}
	}
	return Resolution{Chapters: []model.Chapter{{}}, Source: SourcePlaceholder}
}

// Clean returns a copy of chs with every title passed through CleanTitle
// using the chapter's 1-based position.
func Clean(chs []model.Chapter) []model.Chapter {
	out := make([]model.Chapter, len(chs))
	for i, ch := range chs {
		ch.Title = CleanTitle(ch.Title, i+1)
		out[i] = ch
	}
	return out
}

// CleanTitle removes a track-number prefix tied to position n and a
// trailing clock time from title, repeating until nothing changes.
//
// Recognised prefixes, for n = 2: "2. - ", "02. - ", "2 - ", "02 - ",
// "02. ", "02 ", "2. ". Zero-padded forms are only tried for n < 10.
// Clock times are " h:mm:ss", " hh:mm:ss", " m:ss" or " mm:ss" at the end
// of the title. A strip that would leave nothing is skipped.
//
// Example:
//
//	CleanTitle("02 - Solo 4:20", 2) // Returns "Solo"
//	CleanTitle("Track 2", 2)        // Returns "Track 2"
func CleanTitle(title string, n int) string {
	title = strings.TrimSpace(title)
	prefixes := numberPrefixes(n)
	for {
		next := stripClock(stripPrefix(title, prefixes))
		if next == title {
			return title
		}
		title = next
	}
}

var clockSuffix = regexp.MustCompile(`\s+(?:\d{1,2}:)?\d{1,2}:\d{2}$`)

func numberPrefixes(n int) []string {
	num := strconv.Itoa(n)
	pad := "0" + num
	if n >= 10 {
		return []string{num + ". - ", num + " - ", num + ". "}
	}
	return []string{
		num + ". - ",
		pad + ". - ",
		num + " - ",
		pad + " - ",
		pad + ". ",
		pad + " ",
		num + ". ",
	}
}

func stripPrefix(title string, prefixes []string) string {
	for _, p := range prefixes {
		if !strings.HasPrefix(title, p) {
			continue
		}
		if rest := strings.TrimSpace(title[len(p):]); rest != "" {
			return rest
		}
		return title
	}
	return title
}

func stripClock(title string) string {
	loc := clockSuffix.FindStringIndex(title)
	if loc == nil || loc[0] == 0 {
		return title
	}
	return title[:loc[0]]
}
