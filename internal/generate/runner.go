// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrRunnerNotFound is returned when the runner executable is not on PATH.
var ErrRunnerNotFound = errors.New("language model runner not installed")

// RunnerError reports a runner process that exited with a non-zero status.
type RunnerError struct {
	Bin      string
	ExitCode int
	Stderr   string
}

func (e *RunnerError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Bin, e.ExitCode)
	}
	return fmt.Sprintf("%s error: %s", e.Bin, e.Stderr)
}

// Runner turns a prompt into generated text.
type Runner interface {
	// Run sends prompt to model and returns the raw standard output.
	Run(ctx context.Context, model, prompt string) (string, error)
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	error
	ExitCode() int
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// ProcessRunner runs `<bin> run <model>` with the prompt on standard input,
// the invocation used by ollama.
type ProcessRunner struct {
	bin     string
	timeout time.Duration
	exec    executor
}

// NewProcessRunner returns a runner for bin whose calls are aborted after
// timeout. A zero timeout leaves the call bounded only by ctx.
func NewProcessRunner(bin string, timeout time.Duration) *ProcessRunner {
	return newProcessRunner(bin, timeout, &osExecutor{})
}

func newProcessRunner(bin string, timeout time.Duration, exec executor) *ProcessRunner {
	return &ProcessRunner{bin: bin, timeout: timeout, exec: exec}
}

// Name returns the runner executable.
func (r *ProcessRunner) Name() string { return r.bin }

// Run executes the runner and returns its standard output. A missing
// executable yields ErrRunnerNotFound, a non-zero exit a *RunnerError, and a
// timeout an error wrapping context.DeadlineExceeded.
func (r *ProcessRunner) Run(ctx context.Context, model, prompt string) (string, error) {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRunnerNotFound, r.bin, err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	err := r.exec.RunPiped(ctx, r.bin, []string{"run", model}, strings.NewReader(prompt), &stdout, &stderr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("running %s %s: %w", r.bin, model, ctxErr)
	}
	if err != nil {
		var exitErr exitCoder
		if errors.As(err, &exitErr) {
			return "", &RunnerError{
				Bin:      r.bin,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s: %v", ErrRunnerNotFound, r.bin, err)
		}
		return "", fmt.Errorf("running %s %s: %w", r.bin, model, err)
	}
	return stdout.String(), nil
}
