package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandGlob_Pattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.pdf", "a.pdf", "b.jpg", "notes.txt")

	result, err := ExpandGlob(filepath.Join(dir, "*.{pdf,jpg}"))
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.pdf"),
	}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ExpandGlob() = %v, want %v", result, want)
	}
}

func TestExpandGlob_DoubleStar(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "oct/hotel.pdf", "oct/taxi/1.pdf", "top.pdf")

	result, err := ExpandGlob(filepath.Join(dir, "**", "*.pdf"))
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}
	if len(result) != 3 {
		t.Errorf("ExpandGlob() returned %d files, want 3: %v", len(result), result)
	}
}

func TestExpandGlob_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "receipt.pdf", "sub/inner.pdf")

	result, err := ExpandGlob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}
	want := []string{filepath.Join(dir, "receipt.pdf")}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ExpandGlob() = %v, want %v", result, want)
	}
}

func TestExpandGlob_NoMatch(t *testing.T) {
	dir := t.TempDir()

	result, err := ExpandGlob(filepath.Join(dir, "*.nonexistent"))
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ExpandGlob() = %v, want empty", result)
	}
}

func TestExpandGlob_Empty(t *testing.T) {
	result, err := ExpandGlob("   ")
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}
	if result != nil {
		t.Errorf("ExpandGlob() = %v, want nil", result)
	}
}

func TestExpandGlob_HomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFiles(t, home, "receipts/hotel.pdf")

	result, err := ExpandGlob("~/receipts/*.pdf")
	if err != nil {
		t.Fatalf("ExpandGlob() error = %v", err)
	}
	want := []string{filepath.Join(home, "receipts", "hotel.pdf")}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ExpandGlob() = %v, want %v", result, want)
	}
}

func TestExpandGlobs_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "claim.txt")
	file := filepath.Join(dir, "claim.txt")

	result, err := ExpandGlobs([]string{file})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != file {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, file)
	}
}

func TestExpandGlobs_NoMatchKeepsLiteral(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")

	result, err := ExpandGlobs([]string{missing})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != missing {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, missing)
	}
}

func TestExpandGlobs_Deduplication(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "claim.txt")
	file := filepath.Join(dir, "claim.txt")

	result, err := ExpandGlobs([]string{file, filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ExpandGlobs() returned %d files, want 1 (deduplicated)", len(result))
	}
}

func TestExpandGlobs_PatternOrderKept(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "z.txt")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "z.txt"), filepath.Join(dir, "a.txt")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	want := []string{filepath.Join(dir, "z.txt"), filepath.Join(dir, "a.txt")}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ExpandGlobs() = %v, want %v", result, want)
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	_, err := ExpandGlobs([]string{"[invalid"})
	if err == nil {
		t.Error("ExpandGlobs() expected error for invalid pattern")
	}
}

func TestExpandGlobs_EmptyInput(t *testing.T) {
	result, err := ExpandGlobs([]string{})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ExpandGlobs([]) = %v, want empty", result)
	}
}
