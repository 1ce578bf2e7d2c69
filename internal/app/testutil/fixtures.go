// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteAudioFiles creates placeholder files named names inside dir. The mock
// transcriber never reads their content.
func WriteAudioFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio:"+name), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}
