package vaultsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrNotConfigured is reported when neither a remote nor a mirror path is set.
var ErrNotConfigured = errors.New("vault sync is not configured")

// DefaultTimeout bounds every backend invocation.
const DefaultTimeout = 180 * time.Second

// diagnosticLimit is how many characters of tool output a failure keeps.
const diagnosticLimit = 500

// Backend names the mechanism used for a sync run.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendRclone Backend = "rclone"
	BackendMirror Backend = "mirror"
)

// Outcome classifies a sync run.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeBaseline      Outcome = "baseline"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeToolMissing   Outcome = "tool_missing"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeFailed        Outcome = "failed"
)

// Result 同步结果
// Result is the normalized outcome of one Sync call.
type Result struct {
	OK      bool
	Outcome Outcome
	Backend Backend
	// Target is the remote name or mirror path.
	Target string
	// Detail holds truncated tool output or an error text on failure.
	Detail   string
	Copied   int
	Skipped  int
	Timeout  time.Duration
	Duration time.Duration
}

// Message renders the result as a single log-friendly line.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeOK:
		if r.Backend == BackendMirror {
			return fmt.Sprintf("mirrored to %s (%d copied, %d unchanged)", r.Target, r.Copied, r.Skipped)
		}
		return "rclone sync completed"
	case OutcomeBaseline:
		return "rclone baseline sync completed"
	case OutcomeNotConfigured:
		return ErrNotConfigured.Error()
	case OutcomeToolMissing:
		return "rclone not found"
	case OutcomeTimeout:
		return fmt.Sprintf("timed out after %s", r.Timeout)
	default:
		return "sync failed: " + r.Detail
	}
}

// Recorder persists sync runs.
type Recorder interface {
	RecordSync(ctx context.Context, backend string, ok bool, message string) error
}

// Coordinator 选择同步后端并规范化结果
// Coordinator picks exactly one backend: rclone bisync when a remote is
// configured, else a directory mirror, else nothing. Runs are serialized.
type Coordinator struct {
	VaultPath  string
	Remote     string
	MirrorPath string
	Timeout    time.Duration
	Runner     Runner
	Recorder   Recorder
	Logger     *slog.Logger

	mu sync.Mutex
}

// Configured reports whether any backend is set.
func (c *Coordinator) Configured() bool {
	return strings.TrimSpace(c.Remote) != "" || strings.TrimSpace(c.MirrorPath) != ""
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c *Coordinator) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Sync runs the selected backend once.
func (c *Coordinator) Sync(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	var res Result
	switch {
	case strings.TrimSpace(c.Remote) != "":
		res = c.syncRclone(ctx)
	case strings.TrimSpace(c.MirrorPath) != "":
		res = c.syncMirror(ctx)
	default:
		return Result{Outcome: OutcomeNotConfigured, Backend: BackendNone}
	}
	res.Timeout = c.timeout()
	res.Duration = time.Since(start)

	log := c.logger().With("backend", res.Backend, "target", res.Target, "duration", res.Duration)
	if res.OK {
		log.Info("vault sync done", "outcome", res.Outcome, "copied", res.Copied, "skipped", res.Skipped)
	} else {
		log.Error("vault sync failed", "outcome", res.Outcome, "detail", res.Detail)
	}
	if c.Recorder != nil {
		if err := c.Recorder.RecordSync(ctx, string(res.Backend), res.OK, res.Message()); err != nil {
			log.Warn("record sync run", "err", err)
		}
	}
	return res
}

func (c *Coordinator) runner() Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return ExecRunner{}
}

func (c *Coordinator) syncRclone(ctx context.Context) Result {
	res, stderr := c.bisync(ctx, false)
	// rclone prints the resync hint at the end of a long verbose log, so
	// the full stderr is searched, not the truncated Detail.
	if res.Outcome == OutcomeFailed && strings.Contains(stderr, "resync") {
		c.logger().Info("rclone requests a baseline, retrying with --resync")
		res, _ = c.bisync(ctx, true)
	}
	return res
}

// bisync runs one rclone bisync and also returns the untruncated stderr.
func (c *Coordinator) bisync(ctx context.Context, resync bool) (Result, string) {
	res := Result{Backend: BackendRclone, Target: c.Remote}
	args := []string{"bisync", c.VaultPath, c.Remote}
	if resync {
		args = append(args, "--resync")
	}
	args = append(args, "--verbose")

	runCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	out, err := c.runner().Run(runCtx, "rclone", args...)
	switch {
	case errors.Is(err, exec.ErrNotFound):
		res.Outcome = OutcomeToolMissing
		res.Detail = err.Error()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Outcome = OutcomeTimeout
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Detail = truncate(err.Error(), diagnosticLimit)
	case out.ExitCode != 0:
		res.Outcome = OutcomeFailed
		res.Detail = truncate(out.Stderr, diagnosticLimit)
	default:
		res.OK = true
		res.Outcome = OutcomeOK
		if resync {
			res.Outcome = OutcomeBaseline
		}
	}
	return res, out.Stderr
}

func (c *Coordinator) syncMirror(ctx context.Context) Result {
	res := Result{Backend: BackendMirror, Target: c.MirrorPath}
	runCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	st, err := mirrorTree(runCtx, c.VaultPath, c.MirrorPath)
	res.Copied, res.Skipped = st.Copied, st.Skipped
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Outcome = OutcomeTimeout
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Detail = truncate(err.Error(), diagnosticLimit)
	default:
		res.OK = true
		res.Outcome = OutcomeOK
	}
	return res
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
