// Package runnertest provides a scriptable runner.Runner for tests.
package runnertest

import (
	"context"
	"path/filepath"
	"sync"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// Tool returns the base name of the invoked program.
func (c Call) Tool() string {
	return filepath.Base(c.Name)
}

// Arg returns the argument following flag, or "" if flag is absent.
func (c Call) Arg(flag string) string {
	for i, a := range c.Args {
		if a == flag && i+1 < len(c.Args) {
			return c.Args[i+1]
		}
	}
	return ""
}

// Has reports whether arg appears in the argument list.
func (c Call) Has(arg string) bool {
	for _, a := range c.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// Fake records calls and delegates to a per-tool handler. Tools without a
// handler succeed without doing anything.
type Fake struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]func(Call) error
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{handlers: make(map[string]func(Call) error)}
}

// Handle registers fn for every call whose program base name is tool.
func (f *Fake) Handle(tool string, fn func(Call) error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tool] = fn
	return f
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := Call{Name: name, Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.handlers[call.Tool()]
	f.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(call)
}

// Calls returns a copy of all recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls to tool.
func (f *Fake) CallsTo(tool string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Tool() == tool {
			out = append(out, c)
		}
	}
	return out
}
