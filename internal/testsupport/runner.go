package testsupport

import (
	"context"
	"slices"
	"sync"

	"stereomax/internal/procexec"
)

// FakeRunner records commands and answers them with Handler. A nil Handler
// succeeds with empty output.
type FakeRunner struct {
	Handler func(ctx context.Context, cmd procexec.Command) (procexec.Result, error)

	mu    sync.Mutex
	calls []procexec.Command
}

// Run implements procexec.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd procexec.Command) (procexec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, procexec.Command{Name: cmd.Name, Args: slices.Clone(cmd.Args), Timeout: cmd.Timeout})
	f.mu.Unlock()
	if f.Handler == nil {
		return procexec.Result{Name: cmd.Name, Args: cmd.Args}, nil
	}
	return f.Handler(ctx, cmd)
}

// Calls returns every recorded command in call order.
func (f *FakeRunner) Calls() []procexec.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsTo returns recorded commands for one binary.
func (f *FakeRunner) CallsTo(name string) []procexec.Command {
	var out []procexec.Command
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Stdout returns a successful result carrying stdout.
func Stdout(cmd procexec.Command, stdout string) (procexec.Result, error) {
	return procexec.Result{Name: cmd.Name, Args: cmd.Args, Stdout: []byte(stdout)}, nil
}

// Exit returns a failed result with the given exit code and stderr, paired
// with the *procexec.ExitError a real runner would produce.
func Exit(cmd procexec.Command, code int, stderr string) (procexec.Result, error) {
	res := procexec.Result{Name: cmd.Name, Args: cmd.Args, ExitCode: code, Stderr: []byte(stderr)}
	return res, &procexec.ExitError{Name: cmd.Name, ExitCode: code, Stderr: res.StderrText()}
}

// LastArg returns the final argument of a command, which is the output path
// for every ffmpeg invocation stereomax builds.
func LastArg(cmd procexec.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	return cmd.Args[len(cmd.Args)-1]
}

// ArgAfter returns the argument following flag, or "".
func ArgAfter(cmd procexec.Command, flag string) string {
	for i := 0; i+1 < len(cmd.Args); i++ {
		if cmd.Args[i] == flag {
			return cmd.Args[i+1]
		}
	}
	return ""
}
