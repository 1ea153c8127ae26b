package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// VideoInfo holds the fields of a downloaded video's metadata that the
// pipeline consumes. Every other key of the sidecar document is dropped
// on decode.
type VideoInfo struct {
	// Title is the video title, usually "Band - Album (Year)".
	Title string `json:"title"`

	// Description is the free-text video description.
	Description string `json:"description"`

	// Duration is the video length in seconds.
	Duration float64 `json:"duration"`

	// Chapters are the video's chapter markers in playback order.
	// Nil or empty when the video has none.
	Chapters []Chapter `json:"chapters"`
}

// HasChapters reports whether the video carries its own chapter list.
func (v *VideoInfo) HasChapters() bool {
	return len(v.Chapters) > 0
}

// DecodeVideoInfo reads an info-json document, keeping only the keys
// VideoInfo knows about.
func DecodeVideoInfo(r io.Reader) (*VideoInfo, error) {
	var info VideoInfo
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode video info: %w", err)
	}
	return &info, nil
}

// Chapter is one chapter marker of a video. Its position in the chapter
// list defines the track number of the file written for it.
//
// The validate tags describe a well-formed caller-supplied chapter; video
// chapters are taken as the downloader reports them.
type Chapter struct {
	StartTime float64 `json:"start_time" validate:"gte=0"`
	EndTime   float64 `json:"end_time" validate:"gtfield=StartTime"`
	Title     string  `json:"title" validate:"required"`
}

// IsPlaceholder reports whether c is the empty chapter that stands for
// "the whole video is one track".
func (c Chapter) IsPlaceholder() bool {
	return c == Chapter{}
}

// Segment returns the chapter's time range, or nil when the chapter has no
// usable range.
func (c Chapter) Segment() *Segment {
	if c.EndTime <= c.StartTime {
		return nil
	}
	return &Segment{Start: c.StartTime, End: c.EndTime}
}

// Segment is a half-open time range [Start, End) in seconds.
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Identity is the (band, album, year) triple parsed from a video title.
type Identity struct {
	Band  string
	Album string
	Year  string
}

func (i Identity) String() string {
	return fmt.Sprintf("%s - %s (%s)", i.Band, i.Album, i.Year)
}
