package audio

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"strconv"

	ioutils "github.com/handiism/ydl-music/internal/io"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// TargetExistsError reports an output file that is already present. No
// tool was started and nothing was written.
type TargetExistsError struct {
	Path string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("target %s already exists", e.Path)
}

// TrackWriter writes tracks with ffmpeg.
type TrackWriter struct {
	fs     afero.Fs
	runner runner.Runner
	ffmpeg string
	log    zerolog.Logger
}

// NewTrackWriter creates a TrackWriter invoking the ffmpeg binary at
// ffmpeg. fs is used for the existence check and must see the same files
// ffmpeg does.
func NewTrackWriter(fs afero.Fs, r runner.Runner, ffmpeg string, log zerolog.Logger) *TrackWriter {
	return &TrackWriter{
		fs:     fs,
		runner: r,
		ffmpeg: ffmpeg,
		log:    log.With().Str("component", "writer").Logger(),
	}
}

// Write copies src, or the track's segment of it, to track.Path with the
// track's tags. It fails with *TargetExistsError if track.Path exists.
// If ffmpeg fails, any partial output is removed so a later run can write
// the track.
func (w *TrackWriter) Write(ctx context.Context, src string, track *model.Track) error {
	exists, err := ioutils.Exists(w.fs, track.Path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", track.Path, err)
	}
	if exists {
		return &TargetExistsError{Path: track.Path}
	}

	w.log.Debug().
		Str("track", track.TrackNumber()).
		Str("title", track.Title).
		Str("path", track.Path).
		Msg("writing track")

	if err := w.runner.Run(ctx, w.ffmpeg, TrackArgs(src, track)...); err != nil {
		removePartial(w.fs, track.Path, w.log)
		return err
	}
	return nil
}

// removePartial deletes what a failed ffmpeg run left at path. The caller
// has checked that path did not exist before the run.
func removePartial(fs afero.Fs, path string, log zerolog.Logger) {
	if err := fs.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove partial output")
	}
}

// TrackArgs returns the ffmpeg arguments that cut track out of src.
//
// Metadata of the source container is dropped (-map_metadata -1) so only
// the track's own tags end up in the output, and -n makes ffmpeg refuse
// to replace an existing file.
func TrackArgs(src string, track *model.Track) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin", "-i", src}

	if track.Segment != nil {
		args = append(args,
			"-ss", formatSeconds(track.Segment.Start),
			"-to", formatSeconds(track.Segment.End),
		)
	}

	args = append(args, "-map", "0:a", "-map_metadata", "-1", "-c", "copy")
	for _, tag := range track.Tags() {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}

	return append(args, "-n", track.Path)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
