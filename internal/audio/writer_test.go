package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/handiism/ydl-music/internal/runner/runnertest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlbum() *model.Album {
	return model.NewAlbum(
		model.Identity{Band: "Metallica", Album: "Black Album", Year: "1991"},
		"/music/Metallica/Black Album",
		&model.PathConfig{},
	)
}

func TestTrackArgs_Segment(t *testing.T) {
	track := model.NewTrack(testAlbum(), 2, "Sad but True", &model.Segment{Start: 331.5, End: 655}, ".mp3")

	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", "/tmp/src.mp3",
		"-ss", "331.5", "-to", "655",
		"-map", "0:a", "-map_metadata", "-1", "-c", "copy",
		"-metadata", "title=Sad but True",
		"-metadata", "artist=Metallica",
		"-metadata", "album_artist=Metallica",
		"-metadata", "album=Black Album",
		"-metadata", "track=02",
		"-metadata", "date=1991",
		"-n", "/music/Metallica/Black Album/02 Sad but True.mp3",
	}, TrackArgs("/tmp/src.mp3", track))
}

func TestTrackArgs_WholeFile(t *testing.T) {
	track := model.NewTrack(testAlbum(), 1, "Black Album", nil, ".mp3")
	args := TrackArgs("/tmp/src.mp3", track)

	assert.NotContains(t, args, "-ss")
	assert.NotContains(t, args, "-to")
	assert.Contains(t, args, "track=01")
	assert.Equal(t, "/music/Metallica/Black Album/01 Black Album.mp3", args[len(args)-1])
}

func TestTrackWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	fake := runnertest.New()
	w := NewTrackWriter(fs, fake, "/usr/bin/ffmpeg", zerolog.Nop())
	track := model.NewTrack(testAlbum(), 1, "Enter Sandman", &model.Segment{Start: 0, End: 331}, ".mp3")

	require.NoError(t, w.Write(context.Background(), "/tmp/src.mp3", track))

	calls := fake.CallsTo("ffmpeg")
	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/bin/ffmpeg", calls[0].Name)
	assert.Equal(t, "/tmp/src.mp3", calls[0].Arg("-i"))
	assert.True(t, calls[0].Has("-n"))
}

func TestTrackWriter_TargetExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	track := model.NewTrack(testAlbum(), 1, "Enter Sandman", nil, ".mp3")
	require.NoError(t, afero.WriteFile(fs, track.Path, []byte("original"), 0o644))

	fake := runnertest.New()
	err := NewTrackWriter(fs, fake, "ffmpeg", zerolog.Nop()).Write(context.Background(), "/tmp/src.mp3", track)

	var exists *TargetExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, track.Path, exists.Path)
	assert.Empty(t, fake.Calls(), "no tool may run for an existing target")

	data, err := afero.ReadFile(fs, track.Path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestTrackWriter_ToolError(t *testing.T) {
	toolErr := &runner.ToolError{Tool: "ffmpeg", ExitCode: 1, Err: errors.New("exit status 1")}
	fake := runnertest.New().Handle("ffmpeg", func(runnertest.Call) error { return toolErr })
	track := model.NewTrack(testAlbum(), 1, "x", nil, ".mp3")

	err := NewTrackWriter(afero.NewMemMapFs(), fake, "ffmpeg", zerolog.Nop()).Write(context.Background(), "/src.mp3", track)
	assert.ErrorIs(t, err, toolErr)
}

func TestTrackWriter_FailedRunIsRetryable(t *testing.T) {
	fs := afero.NewMemMapFs()
	track := model.NewTrack(testAlbum(), 1, "Black Album", nil, ".mp3")

	failing := runnertest.New().Handle("ffmpeg", func(c runnertest.Call) error {
		require.NoError(t, afero.WriteFile(fs, c.Args[len(c.Args)-1], []byte("trunc"), 0o644))
		return &runner.ToolError{Tool: "ffmpeg", ExitCode: 255, Err: errors.New("exit status 255")}
	})
	err := NewTrackWriter(fs, failing, "ffmpeg", zerolog.Nop()).Write(context.Background(), "/tmp/src.mp3", track)

	var terr *runner.ToolError
	require.ErrorAs(t, err, &terr)
	ok, err := afero.Exists(fs, track.Path)
	require.NoError(t, err)
	assert.False(t, ok, "partial output must be removed")

	working := runnertest.New().Handle("ffmpeg", func(c runnertest.Call) error {
		return afero.WriteFile(fs, c.Args[len(c.Args)-1], []byte("audio"), 0o644)
	})
	require.NoError(t, NewTrackWriter(fs, working, "ffmpeg", zerolog.Nop()).Write(context.Background(), "/tmp/src.mp3", track))

	data, err := afero.ReadFile(fs, track.Path)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}
