package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/kingrea/rayforge/internal/action"
)

func TestNewParsesQuotedCommand(t *testing.T) {
	act, err := New(action.Config{"command": `go build -ldflags='-s -w' -o bin/canvas ./cmd/canvas`})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := [][]string{{"go", "build", "-ldflags=-s -w", "-o", "bin/canvas", "./cmd/canvas"}}
	if diff := cmp.Diff(want, act.Commands()); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAcceptsArgvListsAndCommandLists(t *testing.T) {
	act, err := New(action.Config{
		"command":  []any{"go", "vet", "./..."},
		"commands": []any{"go test ./...", []any{"echo", "done"}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := [][]string{{"go", "vet", "./..."}, {"go", "test", "./..."}, {"echo", "done"}}
	if diff := cmp.Diff(want, act.Commands()); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := map[string]action.Config{
		"missing":   {},
		"empty":     {"command": "  "},
		"unbalance": {"command": `echo "oops`},
		"bad type":  {"command": 42},
		"bad list":  {"commands": "go test"},
	}
	for name, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRunStreamsOutputAndEchoes(t *testing.T) {
	act := helperAction(t, "echo", "hello canvas")
	rc, stdout, stderr := newRunContext(t)
	result, err := act.Run(context.Background(), rc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != action.StatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
	if got := stdout.String(); got != "hello canvas\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if !strings.HasPrefix(stderr.String(), "$ ") {
		t.Fatalf("expected command echo on stderr, got %q", stderr.String())
	}
}

func TestRunReportsExitCode(t *testing.T) {
	act := helperAction(t, "exit", "3")
	rc, _, _ := newRunContext(t)
	result, err := act.Run(context.Background(), rc)
	if result.Status != action.StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	var cmdErr *action.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T %v", err, err)
	}
	if cmdErr.ExitCode != 3 || !cmdErr.Exited || cmdErr.Target != "test" {
		t.Fatalf("unexpected command error %+v", cmdErr)
	}
	if !errors.Is(err, action.ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed in chain")
	}
	if action.ExitCode(err) != 3 {
		t.Fatalf("expected exit code 3, got %d", action.ExitCode(err))
	}
}

func TestRunStopsAtFirstFailingCommand(t *testing.T) {
	act, err := New(action.Config{
		"quiet": true,
		"commands": []any{
			helperArgv("echo", "one"),
			helperArgv("exit", "2"),
			helperArgv("echo", "three"),
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rc, stdout, stderr := newRunContext(t)
	if _, err := act.Run(context.Background(), rc); action.ExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
	if got := stdout.String(); got != "one\n" {
		t.Fatalf("commands after the failure must not run, stdout=%q", got)
	}
	if stderr.Len() != 0 {
		t.Fatalf("quiet mode should not echo, got %q", stderr.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	act, err := New(action.Config{"command": "rayforge-definitely-missing-binary"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rc, _, _ := newRunContext(t)
	_, err = act.Run(context.Background(), rc)
	var cmdErr *action.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.Exited {
		t.Fatalf("a binary that never started has no exit status")
	}
}

func TestRunPassesEnvironment(t *testing.T) {
	act, err := New(action.Config{
		"command": helperArgv("env", "RAYFORGE_SAMPLES"),
		"env":     map[string]any{"RAYFORGE_SAMPLES": 4},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rc, stdout, _ := newRunContext(t)
	if _, err := act.Run(context.Background(), rc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "4" {
		t.Fatalf("expected env value 4, got %q", got)
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	act := helperAction(t, "echo", "never")
	rc, stdout, _ := newRunContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := act.Run(ctx, rc)
	if !errors.Is(err, context.Canceled) || result.Status != action.StatusCancelled {
		t.Fatalf("expected cancellation, got %s %v", result.Status, err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("nothing should run after cancellation")
	}
}

// TestHelperProcess is not a real test. It is re-executed as the external
// command in the tests above.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("RAYFORGE_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(64)
	}
	switch args[1] {
	case "echo":
		fmt.Println(strings.Join(args[2:], " "))
		os.Exit(0)
	case "exit":
		code, _ := strconv.Atoi(args[2])
		os.Exit(code)
	case "env":
		fmt.Println(os.Getenv(args[2]))
		os.Exit(0)
	}
	os.Exit(64)
}

func helperArgv(args ...string) []any {
	argv := []any{os.Args[0], "-test.run=TestHelperProcess", "--"}
	for _, arg := range args {
		argv = append(argv, arg)
	}
	return argv
}

func helperAction(t *testing.T, args ...string) *Action {
	t.Helper()
	act, err := New(action.Config{"command": helperArgv(args...)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return act
}

func newRunContext(t *testing.T) (*action.RunContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	rc := action.NewRunContext(t.TempDir(), logger, nil).ForTarget("test", "run")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rc.Stdout = stdout
	rc.Stderr = stderr
	rc.Stdin = nil
	rc.Env = map[string]string{"RAYFORGE_HELPER_PROCESS": "1"}
	return rc, stdout, stderr
}
