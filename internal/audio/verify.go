package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/spf13/afero"
)

// Mismatch is one tag whose stored value differs from the expected one.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %q, got %q", m.Field, m.Want, m.Got)
}

// Verifier reads back the ID3 tags of written MP3 files.
//
// Only the fields a player needs to place a file are compared: title,
// artist, album and track number. Track numbers compare numerically, so
// "01", "1" and "1/12" all match track 1.
type Verifier struct {
	fs afero.Fs
}

// NewVerifier creates a Verifier reading through fs.
func NewVerifier(fs afero.Fs) *Verifier {
	return &Verifier{fs: fs}
}

// Verify returns the mismatching fields of track's file. An empty result
// means the tags are as expected.
func (v *Verifier) Verify(track *model.Track) ([]Mismatch, error) {
	f, err := v.fs.Open(track.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", track.Path, err)
	}
	defer f.Close()

	tag, err := id3v2.ParseReader(f, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags of %s: %w", track.Path, err)
	}

	var out []Mismatch
	check := func(field, want, got string) {
		got = strings.TrimRight(got, "\x00")
		if want != got {
			out = append(out, Mismatch{Field: field, Want: want, Got: got})
		}
	}

	check("title", track.Title, tag.Title())
	check("artist", track.Album.Band, tag.Artist())
	check("album", track.Album.Album, tag.Album())

	trck := strings.TrimRight(tag.GetTextFrame("TRCK").Text, "\x00")
	if trackNumber(trck) != track.Number {
		out = append(out, Mismatch{Field: "track", Want: track.TrackNumber(), Got: trck})
	}

	return out, nil
}

func trackNumber(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
