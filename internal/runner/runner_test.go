package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It is the fake external tool
// started by the tests below through the test binary itself.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("YDL_MUSIC_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprintln(os.Stdout, "some progress\rmore progress")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(os.Stderr, "warning line %d\n", i)
	}
	code, _ := strconv.Atoi(os.Getenv("YDL_MUSIC_HELPER_EXIT"))
	os.Exit(code)
}

func helperArgs() []string {
	return []string{"-test.run=TestHelperProcess", "--", "arg with spaces", "$(not expanded)"}
}

func TestExecRunner_Success(t *testing.T) {
	t.Setenv("YDL_MUSIC_HELPER_PROCESS", "1")
	t.Setenv("YDL_MUSIC_HELPER_EXIT", "0")

	r := NewExecRunner(zerolog.Nop())
	require.NoError(t, r.Run(context.Background(), os.Args[0], helperArgs()...))
}

func TestExecRunner_ExitFailure(t *testing.T) {
	t.Setenv("YDL_MUSIC_HELPER_PROCESS", "1")
	t.Setenv("YDL_MUSIC_HELPER_EXIT", "3")

	r := NewExecRunner(zerolog.Nop())
	err := r.Run(context.Background(), os.Args[0], helperArgs()...)

	var terr *ToolError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 3, terr.ExitCode)
	assert.Equal(t, os.Args[0], terr.Tool)
	assert.Equal(t, helperArgs(), terr.Args)
	assert.Contains(t, terr.Stderr, "warning line 29")
	assert.NotContains(t, terr.Stderr, "warning line 9\n")
	assert.Contains(t, terr.Error(), "warning line 29")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(zerolog.Nop())
	err := r.Run(context.Background(), "/nonexistent/definitely-not-a-tool")

	var terr *ToolError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, -1, terr.ExitCode)
}

func TestExecRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewExecRunner(zerolog.Nop())
	err := r.Run(ctx, os.Args[0], helperArgs()...)
	require.Error(t, err)
}

func TestLineTail(t *testing.T) {
	tail := &lineTail{max: 2}
	tail.add("a")
	tail.add("b")
	tail.add("c")
	assert.Equal(t, "b\nc", tail.String())
}

func TestToolError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ToolError{Tool: "/usr/bin/ffmpeg", ExitCode: 1, Err: inner, Stderr: "first\nlast"}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "ffmpeg failed (exit code 1): inner: last", err.Error())
}
