package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ioutils "github.com/handiism/ydl-music/internal/io"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// OutputPrefix is prepended to the base name of every overlapped file.
const OutputPrefix = "output_"

// Overlapper mixes the opening seconds of each track into the end of the
// track before it.
type Overlapper struct {
	fs     afero.Fs
	runner runner.Runner
	ffmpeg string
	log    zerolog.Logger
}

// NewOverlapper creates an Overlapper invoking the ffmpeg binary at ffmpeg.
func NewOverlapper(fs afero.Fs, r runner.Runner, ffmpeg string, log zerolog.Logger) *Overlapper {
	return &Overlapper{
		fs:     fs,
		runner: r,
		ffmpeg: ffmpeg,
		log:    log.With().Str("component", "overlap").Logger(),
	}
}

// Overlap writes, for every file but the last, a copy into outDir named
// by OutputName with the first seconds of the following file mixed into
// its end. The output is re-encoded as MP3 whatever the input format. outDir is created
// if needed. The paths written are returned in order.
func (o *Overlapper) Overlap(ctx context.Context, files []string, outDir string, seconds float64) ([]string, error) {
	if len(files) < 2 {
		return nil, errors.New("overlap needs at least two files")
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("overlap duration must be positive, got %v", seconds)
	}
	if err := ioutils.EnsureDir(o.fs, outDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	written := make([]string, 0, len(files)-1)
	for i := 0; i < len(files)-1; i++ {
		out := filepath.Join(outDir, OutputName(files[i]))

		exists, err := ioutils.Exists(o.fs, out)
		if err != nil {
			return written, fmt.Errorf("failed to check %s: %w", out, err)
		}
		if exists {
			return written, &TargetExistsError{Path: out}
		}

		if err := o.runner.Run(ctx, o.ffmpeg, OverlapArgs(files[i], files[i+1], out, seconds)...); err != nil {
			removePartial(o.fs, out, o.log)
			return written, err
		}

		o.log.Info().Str("from", files[i]).Str("next", files[i+1]).Str("output", out).Msg("overlapped track")
		written = append(written, out)
	}

	return written, nil
}

// OutputName returns the overlapped file name for file: OutputPrefix, the
// base name and an .mp3 extension.
func OutputName(file string) string {
	base := filepath.Base(file)
	return OutputPrefix + strings.TrimSuffix(base, filepath.Ext(base)) + ".mp3"
}

// OverlapArgs returns the ffmpeg arguments mixing the first seconds of next
// into the end of prev.
func OverlapArgs(prev, next, out string, seconds float64) []string {
	filter := fmt.Sprintf(
		"[1]atrim=0:%s,asetpts=PTS-STARTPTS[overlap];[0][overlap]amix=inputs=2:duration=first",
		strconv.FormatFloat(seconds, 'f', -1, 64),
	)
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", prev,
		"-i", next,
		"-filter_complex", filter,
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"-n", out,
	}
}
