// Package playlist reads the CSV file that drives a multi-video run.
//
// The file has a header row and one row per video:
//
//	video_id,custom_title,custom_chapters,edit_times
//	dQw4w9WgXcQ,,,
//	abc123,"Metallica - Black Album (1991)","[{""start_time"":0,""end_time"":99,""title"":""Intro""}]",no
//
// Every row is parsed and validated before anything is returned, so a bad
// row rejects the whole file before any download starts.
package playlist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/handiism/ydl-music/internal/chapters"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/spf13/afero"
)

// Row is one CSV record as written in the file.
type Row struct {
	VideoID        string `csv:"video_id" validate:"required"`
	CustomTitle    string `csv:"custom_title"`
	CustomChapters string `csv:"custom_chapters"`
	EditTimes      string `csv:"edit_times"`
}

// Entry is a parsed and validated Row.
type Entry struct {
	// Line is the file line the row starts on, the header being line 1.
	Line int

	VideoID     string
	CustomTitle string

	// CustomChapters is nil when the row has no override.
	CustomChapters []model.Chapter

	EditTimes bool
}

// MalformedRowError reports a row that does not parse or validate.
type MalformedRowError struct {
	Line    int
	VideoID string
	Field   string
	Err     error
}

func (e *MalformedRowError) Error() string {
	id := e.VideoID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("playlist line %d (video %s): %s: %v", e.Line, id, e.Field, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// ErrEmpty is returned for a file without data rows.
var ErrEmpty = errors.New("playlist has no entries")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and decodes the playlist at path.
func Load(fs afero.Fs, path string) ([]Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a playlist CSV document.
func Decode(r io.Reader) ([]Entry, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to unmarshal playlist CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entry, err := parseRow(i+2, row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRow(line int, row Row) (Entry, error) {
	row.VideoID = strings.TrimSpace(row.VideoID)
	malformed := func(field string, err error) error {
		return &MalformedRowError{Line: line, VideoID: row.VideoID, Field: field, Err: err}
	}

	if err := validate.Struct(row); err != nil || strings.ContainsAny(row.VideoID, " \t") {
		return Entry{}, malformed("video_id", errors.New("must be a non-empty id or URL without spaces"))
	}

	entry := Entry{
		Line:        line,
		VideoID:     row.VideoID,
		CustomTitle: strings.TrimSpace(row.CustomTitle),
	}

	if raw := strings.TrimSpace(row.CustomChapters); raw != "" {
		chs, err := chapters.DecodeOverrides([]byte(raw))
		if err != nil {
			return Entry{}, malformed("custom_chapters", err)
		}
		entry.CustomChapters = chs
	}

	editTimes, err := ParseBool(row.EditTimes)
	if err != nil {
		return Entry{}, malformed("edit_times", err)
	}
	entry.EditTimes = editTimes

	return entry, nil
}

// ParseBool accepts true/false, 1/0 and yes/no in any case. Empty is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no":
		return false, nil
	case "true", "1", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
