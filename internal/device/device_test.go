// file: internal/device/device_test.go
// version: 1.0.0
// guid: 7c3b9e5a-4f8d-4a2c-b6e1-9d5f0c7a3e84

package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestLoadMintsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")

	first, err := Load(path, "")
	if err != nil {
		t.Fatalf("Failed to load identity: %v", err)
	}
	if _, err := ulid.Parse(first.ID); err != nil {
		t.Fatalf("Expected a valid ULID, got %q: %v", first.ID, err)
	}

	second, err := Load(path, "")
	if err != nil {
		t.Fatalf("Failed to reload identity: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected stable id across loads, got %q then %q", first.ID, second.ID)
	}
}

func TestLoadNameOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")

	ident, err := Load(path, "bedroom-ereader")
	if err != nil {
		t.Fatalf("Failed to load identity: %v", err)
	}
	if ident.Name != "bedroom-ereader" {
		t.Errorf("Expected name override, got %q", ident.Name)
	}
}

func TestLoadReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")
	if err := os.WriteFile(path, []byte("not-a-ulid\n"), 0o644); err != nil {
		t.Fatalf("Failed to seed corrupt file: %v", err)
	}

	ident, err := Load(path, "")
	if err != nil {
		t.Fatalf("Failed to load identity: %v", err)
	}
	if _, err := ulid.Parse(ident.ID); err != nil {
		t.Errorf("Expected a fresh valid ULID, got %q", ident.ID)
	}
}
