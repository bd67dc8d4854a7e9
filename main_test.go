// file: main_test.go
// version: 1.1.0
// guid: 5d0a8c2e-7b4f-4d6a-9c1e-3f8b0d6a2e94

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMainHelp(t *testing.T) {
	tempDir := t.TempDir()

	origArgs := os.Args
	defer func() {
		os.Args = origArgs
	}()

	os.Args = []string{
		"novelshelf",
		"--data-dir", tempDir,
		"--config", filepath.Join(tempDir, "config.yaml"),
		"--help",
	}

	main()
}
