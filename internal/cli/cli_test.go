package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/config"
	"github.com/kingrea/rayforge/internal/workflow"
)

func TestInitWritesDefaultTargets(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := execute(t, "init", "-C", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(stdout, "wrote") {
		t.Fatalf("unexpected output %q", stdout)
	}
	def, err := workflow.LoadDefinitionFile(filepath.Join(dir, workflow.DefaultFile))
	if err != nil {
		t.Fatalf("load written file: %v", err)
	}
	want := []string{"clean", "build", "test", "run", "render", "tdd"}
	if diff := cmp.Diff(want, def.TargetIDs()); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, ".rayforge", "config.yaml")); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}

	stdout, _, err = execute(t, "init", "-C", dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(stdout, "already exists") {
		t.Fatalf("expected existing file to be kept, got %q", stdout)
	}
}

func TestListShowsBuiltinTargets(t *testing.T) {
	stdout, _, err := execute(t, "list", "-C", t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, fragment := range []string{"render", "open", "watch", "default: clean, test, render", "built-in definition"} {
		if !strings.Contains(stdout, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, stdout)
		}
	}
}

func TestDryRunPrintsExecutionOrder(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		args []string
		want []string
	}{
		{[]string{"render"}, []string{"clean", "build", "run", "render"}},
		{[]string{"default"}, []string{"clean", "test", "build", "run", "render"}},
		{nil, []string{"clean", "test", "build", "run", "render"}},
		{[]string{"--only", "render"}, []string{"render"}},
	}
	for _, tc := range cases {
		args := append([]string{"-C", dir, "--dry-run"}, tc.args...)
		stdout, _, err := execute(t, args...)
		if err != nil {
			t.Fatalf("dry run %v: %v", tc.args, err)
		}
		if diff := cmp.Diff(tc.want, planIDs(stdout)); diff != "" {
			t.Fatalf("plan for %v mismatch (-want +got):\n%s", tc.args, diff)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "bin")); err == nil {
		t.Fatalf("dry run must not build anything")
	}
}

func TestUnknownTargetFails(t *testing.T) {
	_, _, err := execute(t, "-C", t.TempDir(), "deploy")
	if err == nil {
		t.Fatalf("expected unknown target error")
	}
	if code := action.ExitCode(err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestFailingTestStopsDefaultChain(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 3)
	if err := os.WriteFile(filepath.Join(dir, "canvas.ppm"), []byte("P3\n1 1\n255\n0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "-C", dir, "--no-color")
	if err == nil {
		t.Fatalf("expected the failing test target to fail the run")
	}
	if code := action.ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "canvas.ppm")); statErr == nil {
		t.Fatalf("clean should have removed canvas.ppm")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "rendered")); statErr == nil {
		t.Fatalf("render must not run after a failing test")
	}
	if !strings.Contains(stderr, "- render skipped (test failed)") {
		t.Fatalf("expected skip line in:\n%s", stderr)
	}

	stdout, _, err := execute(t, "status", "-C", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, fragment := range []string{": failed", "exit code 3", "render skipped (upstream-failed)"} {
		if !strings.Contains(stdout, fragment) {
			t.Fatalf("expected %q in status:\n%s", fragment, stdout)
		}
	}

	stdout, _, err = execute(t, "log", "-C", dir, "-n", "1")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(stdout, "target=render status=skipped") {
		t.Fatalf("expected last history entry for render, got:\n%s", stdout)
	}
}

func TestPassingChainRunsEveryTarget(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 0)
	if _, _, err := execute(t, "-C", dir, "default"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "rendered")); err != nil {
		t.Fatalf("render should have run: %v", err)
	}
	stdout, _, err := execute(t, "status", "-C", dir, "--clear")
	if err != nil || !strings.Contains(stdout, "cleared") {
		t.Fatalf("clear: %v %q", err, stdout)
	}
	stdout, _, _ = execute(t, "status", "-C", dir)
	if !strings.Contains(stdout, "no runs recorded yet") {
		t.Fatalf("expected empty status after clear, got %q", stdout)
	}
}

// TestHelperProcess is not a real test. The fixture targets re-execute the
// test binary through it.
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
	case "exit":
		code := 0
		fmt.Sscanf(args[2], "%d", &code)
		os.Exit(code)
	case "touch":
		if err := os.WriteFile(args[2], nil, 0o644); err != nil {
			os.Exit(2)
		}
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

// writeFixture declares clean, test (exiting with testCode) and render
// (touching ./rendered) in rayforge.yaml.
func writeFixture(t *testing.T, dir string, testCode int) {
	t.Helper()
	def := workflow.Definition{
		ID:      "fixture",
		Default: []string{"clean", "test", "render"},
		Env:     map[string]string{"RAYFORGE_HELPER_PROCESS": "1"},
		Targets: []workflow.TargetRef{
			{ID: "clean", Action: "clean", Config: workflow.ActionConfig{"patterns": []any{"*.ppm"}}},
			{ID: "test", Action: "exec", DependsOn: []string{"clean"}, Config: workflow.ActionConfig{
				"command": helperArgv("exit", fmt.Sprint(testCode)),
				"quiet":   true,
			}},
			{ID: "render", Action: "exec", DependsOn: []string{"clean"}, Config: workflow.ActionConfig{
				"command": helperArgv("touch", "rendered"),
				"quiet":   true,
			}},
		},
	}
	data, err := workflow.MarshalDefinitionYAML(def)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, workflow.DefaultFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{"VIEWER", "LOG_LEVEL", "LOG_FORMAT", "FILE", "DEBOUNCE", "NO_COLOR"} {
		t.Setenv(config.EnvPrefix+"_"+key, "")
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func planIDs(out string) []string {
	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			ids = append(ids, fields[1])
		}
	}
	return ids
}
