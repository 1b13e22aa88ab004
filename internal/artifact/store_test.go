package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreCheckStates(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	result, err := store.Check(CanvasPPM)
	if err != nil {
		t.Fatalf("check missing: %v", err)
	}
	if result.State != StateMissing {
		t.Fatalf("expected missing, got %s", result.State)
	}

	writeFile(t, filepath.Join(root, "canvas.ppm"), "P3\n1 1\n255\n0 0 0\n")
	result, err = store.Check(CanvasPPM)
	if err != nil {
		t.Fatalf("check ready: %v", err)
	}
	if result.State != StateReady || len(result.Matches) != 1 {
		t.Fatalf("expected ready with one match, got %+v", result)
	}

	if err := os.MkdirAll(filepath.Join(root, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	dirAsFile := ArtifactRef{ID: "bin-file", Kind: KindFile, Pattern: "bin"}
	result, err = store.Check(dirAsFile)
	if err == nil || result.State != StateInvalid {
		t.Fatalf("expected invalid state for directory checked as file, got %+v", result)
	}
}

func TestStoreRemoveGlobIsNotRecursive(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	writeFile(t, filepath.Join(root, "canvas.ppm"), "x")
	writeFile(t, filepath.Join(root, "chapter5.ppm"), "x")
	writeFile(t, filepath.Join(root, "notes.txt"), "keep")
	writeFile(t, filepath.Join(root, "scenes", "nested.ppm"), "keep")

	removed, err := store.Remove(AnyPPM)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed files, got %v", removed)
	}
	for _, keep := range []string{"notes.txt", filepath.Join("scenes", "nested.ppm")} {
		if _, err := os.Stat(filepath.Join(root, keep)); err != nil {
			t.Fatalf("%s should survive: %v", keep, err)
		}
	}
}

func TestStoreRemoveMissingIsNoOp(t *testing.T) {
	store := NewStore(t.TempDir())
	removed, err := store.Remove(BuildOutput)
	if err != nil {
		t.Fatalf("remove missing dir: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", removed)
	}
}

func TestStoreRemoveRefusesEscapes(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Remove(Resolve("../outside/")); err == nil {
		t.Fatalf("expected escape to be rejected")
	}
	if _, err := store.Remove(Resolve(".")); err == nil {
		t.Fatalf("expected project root removal to be rejected")
	}
}

func TestResolve(t *testing.T) {
	cases := map[string]Kind{
		"canvas-ppm": KindFile,
		"*.png":      KindGlob,
		"dist/":      KindDirectory,
		"out/a.bmp":  KindFile,
	}
	for input, want := range cases {
		if got := Resolve(input).Kind; got != want {
			t.Fatalf("Resolve(%q).Kind = %s, want %s", input, got, want)
		}
	}
	if Resolve("canvas-ppm").Pattern != "canvas.ppm" {
		t.Fatalf("registered id should resolve to its pattern")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
