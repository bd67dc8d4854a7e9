// file: internal/backup/backup.go
// version: 1.1.0
// guid: 9a4c7e2b-5d8f-4a0c-b3e6-1f9d7a4c2e80

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info describes one backup archive.
type Info struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds backup settings.
type Config struct {
	BackupDir  string
	MaxBackups int
}

// DefaultConfig returns the default backup settings, placing archives next to
// the database.
func DefaultConfig(dataDir string) Config {
	return Config{
		BackupDir:  filepath.Join(dataDir, "backups"),
		MaxBackups: 10,
	}
}

// Create writes a compressed archive of the library database. The store must
// not have a write in flight; callers back up through the CLI where the
// process holds the only connection.
func Create(databasePath string, config Config) (*Info, error) {
	if err := os.MkdirAll(config.BackupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("novelshelf_%s.tar.gz", timestamp)
	backupPath := filepath.Join(config.BackupDir, filename)

	if err := writeArchive(backupPath, databasePath); err != nil {
		os.Remove(backupPath)
		return nil, err
	}

	fileInfo, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}
	checksum, err := fileChecksum(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	info := &Info{
		Filename:  filename,
		Path:      backupPath,
		Size:      fileInfo.Size(),
		Checksum:  checksum,
		CreatedAt: time.Now(),
	}

	if err := pruneOld(config.BackupDir, config.MaxBackups); err != nil {
		fmt.Printf("Warning: failed to clean up old backups: %v\n", err)
	}

	return info, nil
}

func writeArchive(backupPath, databasePath string) error {
	info, err := os.Stat(databasePath)
	if err != nil {
		return fmt.Errorf("failed to stat database: %w", err)
	}

	backupFile, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer backupFile.Close()

	gzipWriter := gzip.NewWriter(backupFile)
	tarWriter := tar.NewWriter(gzipWriter)

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(databasePath)
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	src, err := os.Open(databasePath)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(tarWriter, src); err != nil {
		return err
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return backupFile.Close()
}

// Restore extracts the database file from a backup archive into targetDir.
func Restore(backupPath, targetDir string) error {
	backupFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer backupFile.Close()

	gzipReader, err := gzip.NewReader(backupFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		// Archive members are stored with base names only; reject anything
		// that would escape the target directory.
		name := filepath.Base(header.Name)
		target := filepath.Join(targetDir, name)

		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
		outFile, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", target, err)
		}
		if _, err := io.Copy(outFile, tarReader); err != nil {
			outFile.Close()
			return fmt.Errorf("failed to write file %s: %w", target, err)
		}
		outFile.Close()
		if err := os.Chmod(target, os.FileMode(header.Mode)); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", target, err)
		}
	}
	return nil
}

// List returns the backups under backupDir, newest first.
func List(backupDir string) ([]Info, error) {
	var backups []Info

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backupPath := filepath.Join(backupDir, entry.Name())
		checksum, _ := fileChecksum(backupPath)
		backups = append(backups, Info{
			Filename:  entry.Name(),
			Path:      backupPath,
			Size:      info.Size(),
			Checksum:  checksum,
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// pruneOld removes the oldest backups beyond the configured maximum.
func pruneOld(backupDir string, maxBackups int) error {
	backups, err := List(backupDir)
	if err != nil {
		return err
	}
	if maxBackups <= 0 || len(backups) <= maxBackups {
		return nil
	}
	// List is newest first, so everything past maxBackups goes.
	for _, b := range backups[maxBackups:] {
		if err := os.Remove(b.Path); err != nil {
			fmt.Printf("Warning: failed to delete old backup %s: %v\n", b.Filename, err)
		}
	}
	return nil
}
