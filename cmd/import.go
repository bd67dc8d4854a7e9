// file: cmd/import.go
// version: 1.0.0
// guid: 0d7e3b9c-5a1f-4c6d-8b2e-9f4a6c0d3e85

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novelshelf/novelshelf/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Bulk-import novels and chapters from a YAML manifest",
	Long: `Import novels, chapters, and chapter variants described by a YAML
manifest. Novels are matched by slug and chapters by sequence number, so
re-running the same manifest is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore()
		if err != nil {
			return err
		}
		defer closer()

		result, err := importer.Run(store, args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Novels:   %d created, %d matched\n", result.NovelsCreated, result.NovelsMatched)
		fmt.Printf("Chapters: %d created, %d skipped\n", result.ChaptersCreated, result.ChaptersSkipped)
		fmt.Printf("Variants: %d created, %d skipped\n", result.Variants, result.VariantsSkipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
