// Package runner starts external command-line tools with a structured
// argument list. No shell is involved, so arguments are never re-parsed
// or expanded.
//
// Output of the tool is streamed to the logger at debug level line by
// line; the tail of stderr is kept for the error returned on failure.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// stderrTailLines is how many trailing stderr lines a ToolError keeps.
const stderrTailLines = 20

// Runner runs an external program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ToolError reports an external tool that could not be started or exited
// with a failure status.
type ToolError struct {
	// Tool is the program name as passed to Run.
	Tool string

	// Args are the arguments the program was started with.
	Args []string

	// ExitCode is the process exit status, -1 if it never ran or was
	// killed by a signal.
	ExitCode int

	// Stderr holds the last lines the tool wrote to stderr.
	Stderr string

	Err error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit code %d): %v", filepath.Base(e.Tool), e.ExitCode, e.Err)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	log zerolog.Logger
}

// NewExecRunner creates an ExecRunner logging tool output to log.
func NewExecRunner(log zerolog.Logger) *ExecRunner {
	return &ExecRunner{log: log.With().Str("component", "runner").Logger()}
}

// Run starts name with args and waits for it to exit. Cancelling ctx kills
// the process.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	tool := filepath.Base(name)
	r.log.Debug().Str("tool", tool).Strs("args", args).Msg("starting external tool")

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout of %s: %w", tool, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr of %s: %w", tool, err)
	}

	if err := cmd.Start(); err != nil {
		return &ToolError{Tool: name, Args: args, ExitCode: -1, Err: err}
	}

	tail := &lineTail{max: stderrTailLines}
	var g errgroup.Group
	g.Go(func() error {
		return r.stream(stdout, tool, "stdout", nil)
	})
	g.Go(func() error {
		return r.stream(stderr, tool, "stderr", tail)
	})
	readErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", tool, ctx.Err())
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ToolError{Tool: name, Args: args, ExitCode: code, Stderr: tail.String(), Err: err}
	}
	if readErr != nil {
		return fmt.Errorf("failed to read output of %s: %w", tool, readErr)
	}

	r.log.Debug().Str("tool", tool).Msg("external tool finished")
	return nil
}

func (r *ExecRunner) stream(rd io.Reader, tool, stream string, tail *lineTail) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		// progress bars redraw with \r; keep only the latest frame
		line := sc.Text()
		if i := strings.LastIndexByte(line, '\r'); i >= 0 {
			line = line[i+1:]
		}
		if line == "" {
			continue
		}
		if tail != nil {
			tail.add(line)
		}
		r.log.Debug().Str("tool", tool).Str("stream", stream).Msg(line)
	}
	if err := sc.Err(); err != nil {
		// keep the pipe drained so the tool cannot block on a full buffer
		_, _ = io.Copy(io.Discard, rd)
		return err
	}
	return nil
}

type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
