package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"stereomax/internal/logging"
	"stereomax/internal/services"
)

// Command describes a single child process invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'|") {
			parts = append(parts, fmt.Sprintf("%q", arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Result captures the outcome of a finished child process.
type Result struct {
	Name     string
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// StderrText returns trimmed stderr output.
func (r Result) StderrText() string {
	return strings.TrimSpace(string(r.Stderr))
}

// StdoutText returns trimmed stdout output.
func (r Result) StdoutText() string {
	return strings.TrimSpace(string(r.Stdout))
}

// Runner executes commands. Implementations must return a non-nil error for any
// non-zero exit, typically an *ExitError.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// ExitError reports a child process that did not complete successfully.
// Stdout is kept because some tools, mkvmerge among them, print their errors
// there.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string
	Stdout   string
	TimedOut bool
	Err      error
}

// Diagnostic returns the tool's own explanation of the failure: stderr when
// present, otherwise stdout.
func (e *ExitError) Diagnostic() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Stdout
}

func (e *ExitError) Error() string {
	var b strings.Builder
	b.WriteString(e.Name)
	switch {
	case e.TimedOut:
		b.WriteString(": timed out")
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if diag := e.Diagnostic(); diag != "" {
		b.WriteString(": ")
		b.WriteString(diag)
	}
	return b.String()
}

// Unwrap exposes the underlying error and the classification marker.
func (e *ExitError) Unwrap() []error {
	marker := services.ErrExternalTool
	if e.TimedOut {
		marker = services.ErrTimeout
	}
	if e.Err == nil {
		return []error{marker}
	}
	return []error{marker, e.Err}
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger *slog.Logger
	// DefaultTimeout applies when a Command carries no timeout of its own.
	DefaultTimeout time.Duration
}

// NewExecRunner constructs an ExecRunner.
func NewExecRunner(logger *slog.Logger, defaultTimeout time.Duration) *ExecRunner {
	return &ExecRunner{
		logger:         logging.NewComponentLogger(logger, "procexec"),
		DefaultTimeout: defaultTimeout,
	}
}

// Run starts the command, waits for it and captures stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Result{}, errors.New("procexec: empty command name")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running external tool",
		logging.String("command", c.String()),
		logging.Duration("timeout", timeout),
	)

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Name:     c.Name,
		Args:     append([]string(nil), c.Args...),
		ExitCode: exitCode(cmd, runErr),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if runErr == nil {
		logger.Debug("external tool finished",
			logging.String("tool", c.Name),
			logging.Duration("elapsed", result.Duration),
		)
		return result, nil
	}

	exitErr := &ExitError{
		Name:     c.Name,
		ExitCode: result.ExitCode,
		Stderr:   result.StderrText(),
		Stdout:   result.StdoutText(),
		Err:      runErr,
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		exitErr.TimedOut = true
	} else if ctx.Err() != nil {
		exitErr.Err = errors.Join(runErr, ctx.Err())
	}
	return result, exitErr
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err == nil && cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
