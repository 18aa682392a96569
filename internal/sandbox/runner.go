// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"

	"golang.org/x/sys/unix"

	"shroud/pkg/types"
)

// DefaultBwrapName is the isolation primitive looked up on PATH when no
// explicit path is configured.
const DefaultBwrapName = "bwrap"

// ErrSpawn is the sentinel error wrapped by SpawnError.
var ErrSpawn = errors.New("failed to start isolation primitive")

// SpawnError is returned when bwrap itself could not be started. It is kept
// distinct from a non-zero child exit so callers can tell "the sandbox could
// not be built" from "the sandboxed program failed".
type SpawnError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrSpawn so callers can use errors.Is for detection.
func (e *SpawnError) Unwrap() error { return ErrSpawn }

// Runner delegates a synthesized invocation to the isolation primitive as a
// child process. The zero value runs `bwrap` from PATH with the runner
// process's standard streams.
type Runner struct {
	// BwrapPath overrides the executable; empty means look up
	// DefaultBwrapName on PATH.
	BwrapPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run spawns the isolation primitive with the invocation's argument vector,
// waits for it synchronously, and returns the child's exit code verbatim.
// SIGINT and SIGTERM received while waiting are forwarded to the child so
// cancellation behaves exactly as it would for an unwrapped command. The
// engine imposes no timeout of its own.
func (r *Runner) Run(ctx context.Context, inv *Invocation) (types.ExitCode, error) {
	path := r.BwrapPath
	if path == "" {
		found, err := exec.LookPath(DefaultBwrapName)
		if err != nil {
			return types.CodeSpawnFailure, &SpawnError{Path: DefaultBwrapName, Err: err}
		}
		path = found
	}

	cmd := exec.CommandContext(ctx, path, inv.Args()...)
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	slog.Debug("delegating to isolation primitive", "path", path, "command", inv.Command())

	if err := cmd.Start(); err != nil {
		return types.CodeSpawnFailure, &SpawnError{Path: path, Err: err}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, unix.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-signals:
				// Forwarding failures are ignored: the child may already
				// have exited, and Wait below reports its status either way.
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()
	defer func() {
		signal.Stop(signals)
		close(done)
	}()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.ExitCode(exitErr.ExitCode()), nil
		}
		return types.CodeSpawnFailure, &SpawnError{Path: path, Err: err}
	}
	return 0, nil
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
