// file: cmd/backup_test.go
// version: 1.0.0
// guid: 7c2e9a4d-1f6b-4d83-9b5c-8e0f3a7d6c54

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/novelshelf/novelshelf/internal/backup"
	"github.com/novelshelf/novelshelf/internal/config"
)

func TestBackupCreateAndList(t *testing.T) {
	withTestConfig(t)
	seedLibrary(t)

	if err := runBackupCreate(5); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}

	backups, err := backup.List(backup.DefaultConfig(config.AppConfig.DataDir).BackupDir)
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}

	if err := runBackupList(); err != nil {
		t.Errorf("backup list failed: %v", err)
	}
}

func TestBackupCreateWithoutDatabase(t *testing.T) {
	withTestConfig(t)

	if err := runBackupCreate(5); err == nil {
		t.Error("expected an error when no database exists")
	}
}

func TestBackupRestoreDeclined(t *testing.T) {
	withTestConfig(t)
	seedLibrary(t)

	if err := runBackupCreate(5); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	backups, err := backup.List(backup.DefaultConfig(config.AppConfig.DataDir).BackupDir)
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d (err %v)", len(backups), err)
	}

	if err := os.WriteFile(config.AppConfig.DatabasePath, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("failed to overwrite database: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	_, _ = w.Write([]byte("no\n"))
	_ = w.Close()

	origStdin := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = origStdin
	}()

	if err := runBackupRestore(backups[0].Path, false); err != nil {
		t.Fatalf("declined restore should not error: %v", err)
	}

	data, err := os.ReadFile(config.AppConfig.DatabasePath)
	if err != nil {
		t.Fatalf("database missing: %v", err)
	}
	if string(data) != "garbage" {
		t.Error("declined restore must not touch the database")
	}
}

func TestBackupRestoreForced(t *testing.T) {
	withTestConfig(t)
	seedLibrary(t)

	if err := runBackupCreate(5); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	backups, err := backup.List(backup.DefaultConfig(config.AppConfig.DataDir).BackupDir)
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d (err %v)", len(backups), err)
	}

	// Corrupt the live database, then restore over it.
	if err := os.WriteFile(config.AppConfig.DatabasePath, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("failed to corrupt database: %v", err)
	}
	if err := runBackupRestore(backups[0].Path, true); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	// The restored file carries the real SQLite header again.
	data, err := os.ReadFile(filepath.Join(filepath.Dir(config.AppConfig.DatabasePath), filepath.Base(config.AppConfig.DatabasePath)))
	if err != nil {
		t.Fatalf("restored database missing: %v", err)
	}
	if string(data) == "garbage" {
		t.Error("restore did not replace the corrupted database")
	}
}
