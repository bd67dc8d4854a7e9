// file: cmd/diagnostics.go
// version: 1.1.0
// guid: e2a7c5f9-0b4d-4e8a-b6c3-7d1f9e5a2c80

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novelshelf/novelshelf/internal/config"
	"github.com/novelshelf/novelshelf/internal/database"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the library database.",
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Run SQLite integrity and foreign-key checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrityCheck()
		},
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup-empty",
		Short: "Remove chapter variants with empty content",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runCleanupEmptyVariants(force, dryRun)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored novel records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runDiagnosticsQuery(limit)
		},
	}
)

func init() {
	cleanupCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cleanupCmd.Flags().Bool("dry-run", false, "List empty variants without deleting")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")

	diagnosticsCmd.AddCommand(checkCmd)
	diagnosticsCmd.AddCommand(cleanupCmd)
	diagnosticsCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func runIntegrityCheck() error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Printf("Checking %s\n", config.AppConfig.DatabasePath)

	version, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Schema version: %d\n", version)

	problems, err := store.CheckIntegrity()
	if err != nil {
		return fmt.Errorf("integrity check failed to run: %w", err)
	}
	if len(problems) == 0 {
		fmt.Println("Database is sound.")
		return nil
	}

	for _, p := range problems {
		fmt.Printf("  %s\n", p)
	}
	return fmt.Errorf("integrity check found %d problems", len(problems))
}

func runCleanupEmptyVariants(force, dryRun bool) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Printf("Inspecting variants in %s\n", config.AppConfig.DatabasePath)

	empty, err := store.FindEmptyVariants()
	if err != nil {
		return fmt.Errorf("failed to fetch variants: %w", err)
	}
	if len(empty) == 0 {
		fmt.Println("No empty variants detected.")
		return nil
	}

	fmt.Printf("Found %d empty variants:\n", len(empty))
	for i, v := range empty {
		fmt.Printf("%2d. ID: %d\n", i+1, v.ID)
		fmt.Printf("    Chapter: %d\n", v.ChapterID)
		fmt.Printf("    Kind:    %s (%s)\n", v.VariantType, v.Lang)
	}

	if dryRun {
		fmt.Println("Dry run enabled; no deletions were performed.")
		return nil
	}

	if !force {
		confirmed, err := promptYesNo(fmt.Sprintf("Delete %d variants", len(empty)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted. No variants deleted.")
			return nil
		}
	}

	deleted := 0
	for _, v := range empty {
		if err := store.DeleteVariant(v.ID); err != nil {
			fmt.Printf("Failed to delete %d: %v\n", v.ID, err)
			continue
		}
		deleted++
	}

	fmt.Printf("Deleted %d empty variants. Re-run the import to repopulate them.\n", deleted)
	return nil
}

func runDiagnosticsQuery(limit int) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer()

	results, err := store.FindNovels(database.FilterSpec{}, limit, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch novels: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No novels found.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. ID: %d\n", i+1, r.Novel.ID)
		fmt.Printf("    Title: %s\n", r.Novel.Title)
		if r.Novel.Slug != nil {
			fmt.Printf("    Slug:  %s\n", *r.Novel.Slug)
		}
		fmt.Printf("    Chapters: %d\n", r.ChapterCount)
		fmt.Println("---")
	}

	return nil
}

func promptYesNo(action string) (bool, error) {
	fmt.Printf("%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}
