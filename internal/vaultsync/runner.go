package vaultsync

import (
	"context"
	"errors"
	"os/exec"
	"unicode/utf8"
)

// outputLimitBytes caps how much of a tool's stdout/stderr is kept; the
// tail survives.
const outputLimitBytes = 64 * 1024

// RunResult is the outcome of an external command that ran to completion.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands. The context bounds the run; an
// implementation must kill the process when it is done.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run returns a nil error for any exit status; the error is reserved for
// failures to start the command or a cancelled context.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout := newCappedBuffer(outputLimitBytes)
	stderr := newCappedBuffer(outputLimitBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		res.ExitCode = ee.ExitCode()
		return res, nil
	}
	return res, err
}

// cappedBuffer keeps the last max bytes written. Tools such as rclone put
// their conclusion at the end of the output.
type cappedBuffer struct {
	buf       []byte
	max       int
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		// 从字符边界截断 / cut on a rune boundary
		for over < len(b.buf) && !utf8.RuneStart(b.buf[over]) {
			over++
		}
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return "...[truncated]\n" + string(b.buf)
	}
	return string(b.buf)
}
