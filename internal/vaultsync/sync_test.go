package vaultsync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	calls   [][]string
	results []RunResult
	errs    []error
	block   bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.block {
		<-ctx.Done()
		return RunResult{}, ctx.Err()
	}
	i := len(f.calls) - 1
	var res RunResult
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

type fakeRecorder struct {
	runs []string
}

func (r *fakeRecorder) RecordSync(_ context.Context, backend string, ok bool, message string) error {
	r.runs = append(r.runs, fmt.Sprintf("%s:%v:%s", backend, ok, message))
	return nil
}

func TestSyncNotConfigured(t *testing.T) {
	c := &Coordinator{VaultPath: t.TempDir()}
	if c.Configured() {
		t.Fatal("Configured should be false")
	}
	res := c.Sync(context.Background())
	if res.OK || res.Outcome != OutcomeNotConfigured || res.Backend != BackendNone {
		t.Fatalf("res=%+v", res)
	}
}

func TestSyncRcloneSuccess(t *testing.T) {
	r := &fakeRunner{results: []RunResult{{ExitCode: 0}}}
	rec := &fakeRecorder{}
	c := &Coordinator{VaultPath: "/vault", Remote: "gdrive:vault", MirrorPath: "/ignored", Runner: r, Recorder: rec}
	res := c.Sync(context.Background())
	if !res.OK || res.Outcome != OutcomeOK || res.Backend != BackendRclone {
		t.Fatalf("res=%+v", res)
	}
	if got := strings.Join(r.calls[0], " "); got != "rclone bisync /vault gdrive:vault --verbose" {
		t.Fatalf("command=%q", got)
	}
	if len(rec.runs) != 1 || !strings.HasPrefix(rec.runs[0], "rclone:true:") {
		t.Fatalf("recorded=%v", rec.runs)
	}
}

func TestSyncRcloneRetriesWithResyncOnce(t *testing.T) {
	r := &fakeRunner{results: []RunResult{
		{ExitCode: 2, Stderr: "ERROR : Bisync critical error: cannot find prior listings, run with --resync"},
		{ExitCode: 0},
	}}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r}
	res := c.Sync(context.Background())
	if !res.OK || res.Outcome != OutcomeBaseline {
		t.Fatalf("res=%+v", res)
	}
	if len(r.calls) != 2 || strings.Join(r.calls[1], " ") != "rclone bisync /vault r:v --resync --verbose" {
		t.Fatalf("calls=%v", r.calls)
	}
}

func TestSyncRcloneRetriesWhenHintIsPastDiagnosticLimit(t *testing.T) {
	log := strings.Repeat("INFO  : notes/day.md: checking\n", 40) + "ERROR : Bisync aborted. Must run --resync to recover."
	if len(log) <= diagnosticLimit {
		t.Fatalf("log too short: %d", len(log))
	}
	r := &fakeRunner{results: []RunResult{{ExitCode: 2, Stderr: log}, {ExitCode: 0}}}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r}
	res := c.Sync(context.Background())
	if len(r.calls) != 2 {
		t.Fatalf("calls=%d, want 2", len(r.calls))
	}
	if got := strings.Join(r.calls[1], " "); got != "rclone bisync /vault r:v --resync --verbose" {
		t.Fatalf("retry command=%q", got)
	}
	if !res.OK || res.Outcome != OutcomeBaseline {
		t.Fatalf("res=%+v", res)
	}
}

func TestCappedBufferKeepsTail(t *testing.T) {
	b := newCappedBuffer(16)
	fmt.Fprint(b, strings.Repeat("x", 40))
	fmt.Fprint(b, "run --resync")
	got := b.String()
	if !strings.HasSuffix(got, "xxxxrun --resync") || !strings.HasPrefix(got, "...[truncated]") {
		t.Fatalf("String()=%q", got)
	}

	small := newCappedBuffer(16)
	fmt.Fprint(small, "ok")
	if small.String() != "ok" {
		t.Fatalf("String()=%q, want ok", small.String())
	}

	multi := newCappedBuffer(5)
	fmt.Fprint(multi, "ааааа")
	if got := multi.String(); !strings.HasSuffix(got, "аа") || strings.ContainsRune(got, '\uFFFD') {
		t.Fatalf("rune cut String()=%q", got)
	}
}

func TestSyncRcloneResyncFailureIsNotRetriedAgain(t *testing.T) {
	r := &fakeRunner{results: []RunResult{
		{ExitCode: 2, Stderr: "please resync"},
		{ExitCode: 7, Stderr: "still needs resync"},
	}}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r}
	res := c.Sync(context.Background())
	if res.OK || res.Outcome != OutcomeFailed || res.Detail != "still needs resync" {
		t.Fatalf("res=%+v", res)
	}
	if len(r.calls) != 2 {
		t.Fatalf("calls=%d, want 2", len(r.calls))
	}
}

func TestSyncRcloneFailureTruncatesDiagnostics(t *testing.T) {
	r := &fakeRunner{results: []RunResult{{ExitCode: 1, Stderr: strings.Repeat("e", 2000)}}}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r}
	res := c.Sync(context.Background())
	if res.OK || res.Outcome != OutcomeFailed || len(res.Detail) != diagnosticLimit {
		t.Fatalf("outcome=%s detail len=%d", res.Outcome, len(res.Detail))
	}
	if len(r.calls) != 1 {
		t.Fatalf("calls=%d, want 1", len(r.calls))
	}
}

func TestSyncRcloneMissingTool(t *testing.T) {
	r := &fakeRunner{errs: []error{&exec.Error{Name: "rclone", Err: exec.ErrNotFound}}}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r}
	if res := c.Sync(context.Background()); res.Outcome != OutcomeToolMissing || res.OK {
		t.Fatalf("res=%+v", res)
	}
}

func TestSyncRcloneTimeout(t *testing.T) {
	r := &fakeRunner{block: true}
	c := &Coordinator{VaultPath: "/vault", Remote: "r:v", Runner: r, Timeout: 20 * time.Millisecond}
	res := c.Sync(context.Background())
	if res.OK || res.Outcome != OutcomeTimeout {
		t.Fatalf("res=%+v", res)
	}
	if !strings.Contains(res.Message(), "20ms") {
		t.Fatalf("Message()=%q", res.Message())
	}
}

func TestSyncMirrorCopiesAndSkipsUnchanged(t *testing.T) {
	vault := t.TempDir()
	mirror := filepath.Join(t.TempDir(), "icloud", "vault")
	if err := os.MkdirAll(filepath.Join(vault, "tickets"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"tickets/2024-06-01.md": "- [ ] A\n%%id:T-240601-0001%%\n",
		"notes.md":              "hello",
	}
	for rel, body := range files {
		if err := os.WriteFile(filepath.Join(vault, rel), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := &Coordinator{VaultPath: vault, MirrorPath: mirror}
	res := c.Sync(context.Background())
	if !res.OK || res.Backend != BackendMirror || res.Copied != 2 || res.Skipped != 0 {
		t.Fatalf("first res=%+v", res)
	}
	for rel, body := range files {
		data, err := os.ReadFile(filepath.Join(mirror, rel))
		if err != nil || string(data) != body {
			t.Fatalf("%s: data=%q err=%v", rel, data, err)
		}
	}

	if err := os.WriteFile(filepath.Join(vault, "notes.md"), []byte("hello again"), 0o644); err != nil {
		t.Fatal(err)
	}
	res = c.Sync(context.Background())
	if !res.OK || res.Copied != 1 || res.Skipped != 1 {
		t.Fatalf("second res=%+v", res)
	}
	if !strings.Contains(res.Message(), "1 copied, 1 unchanged") {
		t.Fatalf("Message()=%q", res.Message())
	}
}

func TestSyncMirrorInsideVaultIsNotRecursed(t *testing.T) {
	vault := t.TempDir()
	mirror := filepath.Join(vault, "backup")
	if err := os.WriteFile(filepath.Join(vault, "a.md"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Coordinator{VaultPath: vault, MirrorPath: mirror}
	for i := 0; i < 2; i++ {
		if res := c.Sync(context.Background()); !res.OK {
			t.Fatalf("run %d: %+v", i, res)
		}
	}
	if _, err := os.Stat(filepath.Join(mirror, "backup")); !os.IsNotExist(err) {
		t.Fatalf("mirror copied into itself: %v", err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-real-binary-vaultbot")
	if err == nil {
		t.Fatal("expected error")
	}
}
