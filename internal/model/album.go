package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Album represents the output of one processed video: the parsed identity,
// the folder the tracks are written to, and the tracks themselves.
//
// Example:
//
//	cfg := &PathConfig{
//	    CoverArtFileName:       "cover",
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
//	album := NewAlbum(Identity{"Metallica", "Black Album", "1991"}, "/music/Metallica/Black Album", cfg)
//	// album.PlaylistPath = "/music/Metallica/Black Album/Black Album.m3u"
type Album struct {
	Identity

	// Tracks contains all tracks in this album, in track-number order.
	Tracks []*Track

	// Path is the local directory the album's tracks are saved in.
	Path string

	// ArtworkPath is the local file path for the cover art (always JPEG).
	ArtworkPath string

	// PlaylistPath is the local file path for the playlist file.
	PlaylistPath string
}

// NewAlbum creates a new Album rooted at dir with computed side-file paths.
//
// The pathConfig placeholders are:
//   - {band} - Band name
//   - {album} - Album title
//   - {year} - Year parsed from the video title
//
// Invalid filename characters are replaced with underscores.
func NewAlbum(id Identity, dir string, cfg *PathConfig) *Album {
	album := &Album{
		Identity: id,
		Path:     dir,
	}

	album.PlaylistPath = album.parsePlaylistPath(cfg)
	album.ArtworkPath = album.parseArtworkPath(cfg)

	return album
}

// PathConfig holds file naming settings for album side files.
type PathConfig struct {
	// CoverArtFileName is the filename template for cover art (without extension).
	// Example: "cover" or "{album}"
	CoverArtFileName string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls", "wpl", "zpl")
// to a PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

func (a *Album) parsePlaylistPath(cfg *PathConfig) string {
	name := a.expand(cfg.PlaylistFileNameFormat)
	if name == "" {
		name = sanitizeFileName(a.Album)
	}
	return filepath.Join(a.Path, name+cfg.PlaylistFormat.Extension())
}

func (a *Album) parseArtworkPath(cfg *PathConfig) string {
	name := a.expand(cfg.CoverArtFileName)
	if name == "" {
		name = "cover"
	}
	return filepath.Join(a.Path, name+".jpg")
}

func (a *Album) expand(format string) string {
	name := format
	name = strings.ReplaceAll(name, "{year}", a.Year)
	name = strings.ReplaceAll(name, "{album}", a.Album)
	name = strings.ReplaceAll(name, "{band}", a.Band)
	return sanitizeFileName(name)
}

// sanitizeFileName replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Surrounding whitespace is removed
func sanitizeFileName(name string) string {
	name = invalidPathChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

var (
	invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	multiSpace       = regexp.MustCompile(`\s+`)
)
