package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewestLogPicksLatestTimestamp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"metadata_generation_20250225_104413.log",
		"metadata_generation_20250226_090000.log",
		"metadata_generation_20250225_235959.log",
		"other_20250227_000000.log",
		"metadata_generation_notalog.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	got, err := newestLog(dir, "metadata_generation")
	if err != nil {
		t.Fatalf("newestLog: %v", err)
	}
	want := filepath.Join(dir, "metadata_generation_20250226_090000.log")
	if got != want {
		t.Fatalf("newestLog: got %q want %q", got, want)
	}
}

func TestNewestLogEmptyDir(t *testing.T) {
	if _, err := newestLog(t.TempDir(), "metadata_generation"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines, err := lastLines(path, 2)
	if err != nil {
		t.Fatalf("lastLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected tail: %v", lines)
	}

	// Asking for more lines than exist returns them all.
	lines, err = lastLines(path, 100)
	if err != nil {
		t.Fatalf("lastLines: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
}

func TestLastLinesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines, err := lastLines(path, 10)
	if err != nil {
		t.Fatalf("lastLines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
