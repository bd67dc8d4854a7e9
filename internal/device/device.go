// file: internal/device/device.go
// version: 1.0.0
// guid: 2a6e8c4f-9b1d-4d7a-8e3c-5f0a2b9d6c48

package device

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Identity is this installation's stable reading identity. The ID is minted
// once and reused for every progress row the device writes.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Load returns the device identity stored at path, minting and persisting a
// new ULID on first use. The name argument overrides the hostname-derived
// label when non-empty.
func Load(path, name string) (*Identity, error) {
	id, err := readOrCreateID(path)
	if err != nil {
		return nil, err
	}

	label := name
	if label == "" {
		if host, err := os.Hostname(); err == nil {
			label = host
		} else {
			label = "unknown"
		}
	}

	return &Identity{ID: id, Name: label}, nil
}

func readOrCreateID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, parseErr := ulid.Parse(id); parseErr == nil {
			return id, nil
		}
		log.Printf("Warning: device id file %s is corrupt, minting a new id", path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := ulid.Make().String()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create device id dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write device id: %w", err)
	}
	log.Printf("Minted new device id %s", id)
	return id, nil
}
