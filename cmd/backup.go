// file: cmd/backup.go
// version: 1.0.0
// guid: 4d8b2f6e-9a1c-4c5b-8e7d-3f0a6b9d4c21

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/novelshelf/novelshelf/internal/backup"
	"github.com/novelshelf/novelshelf/internal/config"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Back up and restore the library database",
	}

	backupCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Write a compressed backup of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxBackups, _ := cmd.Flags().GetInt("max-backups")
			return runBackupCreate(maxBackups)
		},
	}

	backupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupList()
		},
	}

	backupRestoreCmd = &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the database from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			return runBackupRestore(args[0], force)
		},
	}
)

func init() {
	backupCreateCmd.Flags().Int("max-backups", 10, "Number of backups to keep")
	backupRestoreCmd.Flags().Bool("yes", false, "Skip confirmation prompt")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupCreate(maxBackups int) error {
	dbPath := config.AppConfig.DatabasePath
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no database at %s: %w", dbPath, err)
	}

	backupConfig := backup.DefaultConfig(config.AppConfig.DataDir)
	if maxBackups > 0 {
		backupConfig.MaxBackups = maxBackups
	}

	info, err := backup.Create(dbPath, backupConfig)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	fmt.Printf("Created %s (%d bytes)\n", info.Filename, info.Size)
	fmt.Printf("SHA-256: %s\n", info.Checksum)
	return nil
}

func runBackupList() error {
	backupConfig := backup.DefaultConfig(config.AppConfig.DataDir)
	backups, err := backup.List(backupConfig.BackupDir)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Println("No backups found")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%s  %10d bytes  %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"), b.Size, b.Filename)
	}
	return nil
}

func runBackupRestore(archive string, force bool) error {
	if _, err := os.Stat(archive); err != nil {
		return fmt.Errorf("backup archive not found: %w", err)
	}

	targetDir := filepath.Dir(config.AppConfig.DatabasePath)
	if !force {
		fmt.Printf("This will overwrite the database under %s.\n", targetDir)
		confirmed, err := promptYesNo("Restore this backup")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := backup.Restore(archive, targetDir); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	fmt.Printf("Restored database from %s\n", filepath.Base(archive))
	return nil
}
