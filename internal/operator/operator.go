// Package operator provides the correction strategies the pipeline falls
// back to when it needs a human: a replacement video title, or edited
// chapter times.
//
// The default strategy, NonInteractive, never blocks and answers every
// question with ErrNonInteractive so callers can surface their own typed
// error instead. Terminal asks on a line-oriented reader/writer pair.
package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNonInteractive is returned by operators that cannot answer questions.
var ErrNonInteractive = errors.New("no interactive operator available")

// Operator answers free-text questions asked by the pipeline.
type Operator interface {
	// Ask poses a question and returns the answer with surrounding
	// whitespace removed. An empty answer is valid.
	Ask(ctx context.Context, question string) (string, error)
}

// NonInteractive is an Operator that refuses every question.
type NonInteractive struct{}

// Ask always returns ErrNonInteractive.
func (NonInteractive) Ask(context.Context, string) (string, error) {
	return "", ErrNonInteractive
}

// CanAsk reports whether op may be able to answer questions. It is false
// for nil and NonInteractive operators.
func CanAsk(op Operator) bool {
	switch op.(type) {
	case nil, NonInteractive, *NonInteractive:
		return false
	}
	return true
}

// Func adapts a plain function to the Operator interface.
type Func func(ctx context.Context, question string) (string, error)

// Ask calls f.
func (f Func) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// Terminal asks questions on out and reads one line per answer from in.
//
// Example:
//
//	op := operator.NewTerminal(os.Stdin, os.Stdout)
//	answer, err := op.Ask(ctx, "Paste a parseable title")
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal operator.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Ask writes the question followed by ": " and waits for a line of input.
// Reading is not interruptible; ctx is checked before prompting.
func (t *Terminal) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(t.out, "%s: ", question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
