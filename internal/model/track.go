package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Track represents one output audio file cut from a video.
//
// Track contains:
//   - Track number and title for tagging and file naming
//   - The time segment of the source audio, nil for the whole file
//   - Computed local file path
//
// Example:
//
//	track := NewTrack(album, 1, "Enter Sandman", &Segment{Start: 0, End: 331}, ".mp3")
//	// track.Path = "/music/Metallica/Black Album/01 Enter Sandman.mp3"
type Track struct {
	// Album is a reference to the parent album.
	Album *Album

	// Number is the track number (1-indexed).
	Number int

	// Title is the track title as written to the tags (not sanitized).
	Title string

	// Segment restricts the output to a part of the source audio.
	// Nil means the whole source is copied.
	Segment *Segment

	// Path is the computed local file path where the track will be saved.
	Path string
}

// Tag is one metadata key/value pair passed to the media tool.
type Tag struct {
	Key   string
	Value string
}

// NewTrack creates a new Track with computed path.
//
// ext is the output extension including the dot, usually the source
// audio's extension since the codec stream is copied as-is.
func NewTrack(album *Album, number int, title string, segment *Segment, ext string) *Track {
	track := &Track{
		Album:   album,
		Number:  number,
		Title:   title,
		Segment: segment,
	}

	track.Path = track.parseFilePath(ext)

	return track
}

// TrackNumber returns the track number zero-padded to at least two digits.
func (t *Track) TrackNumber() string {
	return FormatTrackNumber(t.Number)
}

// Tags returns the metadata set stamped onto the output file, in a fixed
// order.
func (t *Track) Tags() []Tag {
	return []Tag{
		{Key: "title", Value: t.Title},
		{Key: "artist", Value: t.Album.Band},
		{Key: "album_artist", Value: t.Album.Band},
		{Key: "album", Value: t.Album.Album},
		{Key: "track", Value: t.TrackNumber()},
		{Key: "date", Value: t.Album.Year},
	}
}

// Duration returns the track length in seconds if known from its segment,
// and 0 otherwise.
func (t *Track) Duration() float64 {
	if t.Segment == nil {
		return 0
	}
	return t.Segment.Duration()
}

// FormatTrackNumber renders a 1-based track number with at least two
// digits: 1 -> "01", 12 -> "12", 123 -> "123".
func FormatTrackNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}

// SanitizeTitle replaces every character that is not a word character,
// whitespace or hyphen with an underscore. Word characters include
// non-ASCII letters, marks and digits.
//
// Example:
//
//	SanitizeTitle("Fade to Black / Live") // Returns "Fade to Black _ Live"
//	SanitizeTitle("Motörhead's Song?")    // Returns "Motörhead_s Song_"
func SanitizeTitle(title string) string {
	return nonWordChars.ReplaceAllString(title, "_")
}

var nonWordChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)

func (t *Track) parseFilePath(ext string) string {
	fileName := t.TrackNumber() + " " + SanitizeTitle(t.Title)
	filePath := filepath.Join(t.Album.Path, fileName+ext)

	// Limit total path length for Windows compatibility (MAX_PATH = 260)
	if len(filePath) >= 260 {
		maxLen := 259 - len(t.Album.Path) - 1 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(t.Album.Path, strings.ToValidUTF8(fileName[:maxLen], "")+ext)
		}
	}

	return filePath
}
