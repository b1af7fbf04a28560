// Package shellexec runs subprocess commands, sequentially or with bounded
// concurrency. A command is either an argv list or a single string executed
// through the shell.
package shellexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Spec names one command to run.
type Spec struct {
	// Argv is the command and its arguments. When empty, Line is run
	// through the shell instead.
	Argv []string
	// Line is a shell command string, used only when Argv is empty.
	Line string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env extends the inherited environment. Nil adds nothing.
	Env []string
	// Capture collects stdout/stderr into the result. When false the
	// command inherits the parent's streams.
	Capture bool
}

// Result reports one finished command.
type Result struct {
	Spec     Spec
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// ErrEmptyCommand reports a Spec with neither Argv nor Line.
var ErrEmptyCommand = errors.New("shellexec: empty command")

func (s Spec) command(ctx context.Context) (*exec.Cmd, error) {
	if len(s.Argv) > 0 {
		return exec.CommandContext(ctx, s.Argv[0], s.Argv[1:]...), nil
	}
	if s.Line == "" {
		return nil, ErrEmptyCommand
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	return exec.CommandContext(ctx, shell, "-c", s.Line), nil
}

// Run executes one command and waits for it.
func Run(ctx context.Context, spec Spec) Result {
	res := Result{Spec: spec, ExitCode: -1}
	cmd, err := spec.command(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	var stdout, stderr bytes.Buffer
	if spec.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err = cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err == nil {
		res.ExitCode = 0
		return res
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res
	}
	res.Err = err
	return res
}

// RunAll executes the commands with at most limit in flight. Results are in
// input order; individual failures do not abort the batch.
func RunAll(ctx context.Context, specs []Spec, limit int) []Result {
	if limit <= 0 {
		limit = 5
	}
	results := make([]Result, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = Run(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
