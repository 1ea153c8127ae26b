package audio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"

	"github.com/handiism/ydl-music/internal/model"
)

// PlaylistCreator renders an album's tracks as a playlist file.
//
// Entries are the bare track file names, in track order, so the playlist
// must be saved in the album directory.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content, err := creator.CreatePlaylist(album)
//
//	// Result:
//	// #EXTM3U
//	// #PLAYLIST:Black Album
//	// #EXTART:Metallica
//	// #EXTINF:331,Metallica - Enter Sandman
//	// 01 Enter Sandman.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // M3U only: #EXT directives with titles and lengths
}

// NewPlaylistCreator creates a new PlaylistCreator. extended is ignored
// for formats other than M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist renders the playlist for album. Tracks of unknown
// length, such as a whole-video track, get length -1 in M3U and PLS and
// no duration in ZPL.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) ([]byte, error) {
	var buf bytes.Buffer

	switch p.format {
	case model.PlaylistFormatPLS:
		writePLS(&buf, album)
	case model.PlaylistFormatWPL:
		if err := writeSMIL(&buf, "wpl", "1.0", wplDocument(album)); err != nil {
			return nil, err
		}
	case model.PlaylistFormatZPL:
		if err := writeSMIL(&buf, "zpl", "2.0", zplDocument(album)); err != nil {
			return nil, err
		}
	default:
		writeM3U(&buf, album, p.extended)
	}

	return buf.Bytes(), nil
}

func writeM3U(buf *bytes.Buffer, album *model.Album, extended bool) {
	if extended {
		buf.WriteString("#EXTM3U\n")
		fmt.Fprintf(buf, "#PLAYLIST:%s\n", album.Album)
		fmt.Fprintf(buf, "#EXTART:%s\n", album.Band)
	}

	for _, track := range album.Tracks {
		if extended {
			fmt.Fprintf(buf, "#EXTINF:%d,%s - %s\n", trackLength(track), album.Band, track.Title)
		}
		buf.WriteString(filepath.Base(track.Path))
		buf.WriteByte('\n')
	}
}

// writePLS writes the INI-style format read by Winamp and most radio
// players.
func writePLS(buf *bytes.Buffer, album *model.Album) {
	buf.WriteString("[playlist]\n")
	for i, track := range album.Tracks {
		n := i + 1
		fmt.Fprintf(buf, "File%d=%s\n", n, filepath.Base(track.Path))
		fmt.Fprintf(buf, "Title%d=%s - %s\n", n, album.Band, track.Title)
		fmt.Fprintf(buf, "Length%d=%d\n", n, trackLength(track))
	}
	fmt.Fprintf(buf, "NumberOfEntries=%d\n", len(album.Tracks))
	buf.WriteString("Version=2\n")
}

// WPL (Windows Media Player) and ZPL (Zune) are both SMIL documents.
type smil struct {
	XMLName xml.Name   `xml:"smil"`
	Head    smilHead   `xml:"head"`
	Media   []smilItem `xml:"body>seq>media"`
}

type smilHead struct {
	Meta  []smilMeta `xml:"meta"`
	Title string     `xml:"title"`
}

type smilMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type smilItem struct {
	Src         string `xml:"src,attr"`
	AlbumTitle  string `xml:"albumTitle,attr,omitempty"`
	AlbumArtist string `xml:"albumArtist,attr,omitempty"`
	TrackTitle  string `xml:"trackTitle,attr,omitempty"`
	TrackArtist string `xml:"trackArtist,attr,omitempty"`
	Duration    int64  `xml:"duration,attr,omitempty"`
}

func wplDocument(album *model.Album) smil {
	doc := smil{Head: smilHead{Title: album.Album}}
	for _, track := range album.Tracks {
		doc.Media = append(doc.Media, smilItem{Src: filepath.Base(track.Path)})
	}
	return doc
}

func zplDocument(album *model.Album) smil {
	doc := smil{Head: smilHead{
		Title: album.Album,
		Meta: []smilMeta{
			{Name: "Generator", Content: "ydl-music"},
			{Name: "ItemCount", Content: fmt.Sprint(len(album.Tracks))},
		},
	}}
	for _, track := range album.Tracks {
		item := smilItem{
			Src:         filepath.Base(track.Path),
			AlbumTitle:  album.Album,
			AlbumArtist: album.Band,
			TrackTitle:  track.Title,
			TrackArtist: album.Band,
		}
		if track.Segment != nil {
			item.Duration = int64(track.Duration() * 1000)
		}
		doc.Media = append(doc.Media, item)
	}
	return doc
}

func writeSMIL(buf *bytes.Buffer, kind, version string, doc smil) error {
	fmt.Fprintf(buf, "<?%s version=%q?>\n", kind, version)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode %s playlist: %w", kind, err)
	}
	buf.WriteByte('\n')
	return nil
}

// trackLength returns the track length in whole seconds, -1 if unknown.
func trackLength(track *model.Track) int {
	if track.Segment == nil {
		return -1
	}
	return int(track.Duration())
}
