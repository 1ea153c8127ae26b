// Package ytdl downloads a video's audio track and metadata sidecar with
// yt-dlp.
package ytdl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	infoSuffix     = ".info.json"
	outputTemplate = "%(title)s.%(ext)s"
	shortURLPrefix = "https://youtu.be/"
)

// Options configure the yt-dlp invocation.
type Options struct {
	// Binary is the yt-dlp executable, looked up in PATH when not absolute.
	Binary string

	// AudioFormat is passed to --audio-format and names the extension of
	// the extracted file.
	AudioFormat string

	// AudioQuality is passed to --audio-quality, e.g. "192K".
	AudioQuality string
}

// Result is what a download leaves in the work directory.
type Result struct {
	AudioPath    string
	InfoPath     string
	Info         *model.VideoInfo
	ThumbnailURL string
}

// Downloader runs yt-dlp into a caller-owned directory.
type Downloader struct {
	fs     afero.Fs
	runner runner.Runner
	opts   Options
	log    zerolog.Logger
}

// NewDownloader creates a Downloader. fs must see the files the runner's
// processes write.
func NewDownloader(fs afero.Fs, r runner.Runner, opts Options, log zerolog.Logger) *Downloader {
	return &Downloader{
		fs:     fs,
		runner: r,
		opts:   opts,
		log:    log.With().Str("component", "ytdl").Logger(),
	}
}

// VideoURL expands a bare video id to a watch URL. Anything that already
// looks like an http(s) URL is returned unchanged.
func VideoURL(locator string) string {
	locator = strings.TrimSpace(locator)
	lower := strings.ToLower(locator)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return locator
	}
	return shortURLPrefix + locator
}

// Args returns the yt-dlp argument list for downloading url into dir.
func (d *Downloader) Args(url, dir string) []string {
	return []string{
		url,
		"-o", filepath.Join(dir, outputTemplate),
		"-x",
		"--audio-format", d.opts.AudioFormat,
		"--audio-quality", d.opts.AudioQuality,
		"--write-info-json",
		"--no-playlist",
	}
}

// Download fetches locator into dir, which should be empty, and loads the
// metadata sidecar.
func (d *Downloader) Download(ctx context.Context, locator, dir string) (*Result, error) {
	url := VideoURL(locator)
	d.log.Info().Str("url", url).Msg("downloading audio")

	if err := d.runner.Run(ctx, d.opts.Binary, d.Args(url, dir)...); err != nil {
		return nil, err
	}

	infoPath, err := d.findOne(dir, func(name string) bool {
		return strings.HasSuffix(name, infoSuffix)
	}, "metadata sidecar")
	if err != nil {
		return nil, err
	}

	ext := "." + strings.ToLower(d.opts.AudioFormat)
	audioPath, err := d.findOne(dir, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ext) && !strings.HasSuffix(name, infoSuffix)
	}, ext+" audio file")
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(d.fs, infoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", infoPath, err)
	}
	info, err := model.DecodeVideoInfo(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var extra struct {
		Thumbnail string `json:"thumbnail"`
	}
	// The thumbnail is optional, a sidecar that decoded above cannot fail here.
	_ = json.Unmarshal(data, &extra)

	d.log.Debug().
		Str("title", info.Title).
		Float64("duration", info.Duration).
		Int("chapters", len(info.Chapters)).
		Msg("loaded video info")

	return &Result{
		AudioPath:    audioPath,
		InfoPath:     infoPath,
		Info:         info,
		ThumbnailURL: extra.Thumbnail,
	}, nil
}

func (d *Downloader) findOne(dir string, match func(string) bool, what string) (string, error) {
	entries, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if !e.IsDir() && match(e.Name()) {
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("yt-dlp left no %s in %s", what, dir)
	default:
		return "", fmt.Errorf("yt-dlp left %d candidates for the %s in %s", len(found), what, dir)
	}
}
