package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/handiism/ydl-music/internal/operator"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	io.Closer
	closed bool
}

func (c *recordingCloser) Close() error {
	c.closed = true
	return c.Closer.Close()
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := a.rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", "/etc/ydl-music/config.toml",
		"--root", "/music",
		"--log-file", filepath.Join(t.TempDir(), "ydl-music.log"),
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVideo_EditTimesNeedsInteractive(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := &app{fs: fs}

	_, err := run(t, a, "video", "dQw4w9WgXcQ", "--edit-times")
	assert.ErrorIs(t, err, operator.ErrNonInteractive)

	entries, _ := afero.ReadDir(fs, "/music")
	assert.Empty(t, entries)
	a.close()
}

func TestPlaylist_EditTimesRowNeedsInteractive(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/list.csv", []byte(
		"video_id,custom_title,custom_chapters,edit_times\nabc,,,true\n"), 0o644))
	a := &app{fs: fs}

	_, err := run(t, a, "playlist", "/list.csv")
	assert.ErrorIs(t, err, operator.ErrNonInteractive)
	a.close()
}

func TestClose_AfterFailedCommand(t *testing.T) {
	a := &app{fs: afero.NewMemMapFs()}

	_, err := run(t, a, "playlist", "/missing.csv")
	require.Error(t, err)
	require.NotNil(t, a.closer, "logging is set up before the command runs")

	rc := &recordingCloser{Closer: a.closer}
	a.closer = rc
	a.close()

	assert.True(t, rc.closed)
	assert.Nil(t, a.closer)
	a.close()
}
