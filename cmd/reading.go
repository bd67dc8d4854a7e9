// file: cmd/reading.go
// version: 1.1.0
// guid: 8b2d6f0a-4c9e-4a7b-9e1d-6f3a8c5b0e72

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novelshelf/novelshelf/internal/database"
	"github.com/novelshelf/novelshelf/internal/matcher"
)

var (
	// progressCmd groups the per-device reading progress operations.
	progressCmd = &cobra.Command{
		Use:   "progress",
		Short: "Record and inspect reading progress",
	}

	progressSetCmd = &cobra.Command{
		Use:   "set <novel-slug> <chapter-seq> <position>",
		Short: "Record a read position for a chapter",
		Long: `Record how far into a chapter this device has read, as a fraction
in [0,1]. A position of 0.9 or more marks the chapter as read.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer()

			novel, chapter, err := resolveChapter(store, args[0], args[1])
			if err != nil {
				return err
			}
			position, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[2], err)
			}

			ident, err := loadIdentity()
			if err != nil {
				return err
			}
			if err := store.SaveProgress(novel.ID, chapter.ID, position, ident.ID); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
			fmt.Printf("Recorded chapter %d at %.0f%% for %s\n", chapter.Seq, position*100, ident.Name)
			return nil
		},
	}

	progressShowCmd = &cobra.Command{
		Use:   "show <novel-slug>",
		Short: "Show this device's completion summary for a novel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer()

			novel, err := resolveNovel(store, args[0])
			if err != nil {
				return err
			}
			ident, err := loadIdentity()
			if err != nil {
				return err
			}

			summary, err := store.GetSummary(novel.ID, ident.ID)
			if err != nil {
				return fmt.Errorf("failed to load summary: %w", err)
			}
			fmt.Printf("%s\n", novel.Title)
			fmt.Printf("  chapters: %d\n", summary.TotalChapters)
			fmt.Printf("  last read: %d\n", summary.LastReadSeq)
			fmt.Printf("  progress: %.0f%%\n", summary.Percent*100)
			return nil
		},
	}

	// continueCmd prints where this device should resume a novel.
	continueCmd = &cobra.Command{
		Use:   "continue <novel-slug>",
		Short: "Show where this device left off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer()

			novel, err := resolveNovel(store, args[0])
			if err != nil {
				return err
			}
			ident, err := loadIdentity()
			if err != nil {
				return err
			}

			state, err := store.GetContinuePoint(novel.ID, ident.ID)
			if err != nil {
				return fmt.Errorf("failed to load continue point: %w", err)
			}
			if state == nil {
				fmt.Printf("%s: not started on this device\n", novel.Title)
				return nil
			}

			chapter, err := store.GetChapterByID(state.ChapterID)
			if err != nil {
				return err
			}
			if chapter == nil {
				fmt.Printf("%s: last-read chapter no longer exists\n", novel.Title)
				return nil
			}
			fmt.Printf("%s: chapter %d at %.0f%%\n", novel.Title, chapter.Seq, state.PositionPct*100)
			return nil
		},
	}

	// deviceCmd prints this installation's stable reading identity.
	deviceCmd = &cobra.Command{
		Use:   "device",
		Short: "Show this device's identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := loadIdentity()
			if err != nil {
				return err
			}
			fmt.Printf("ID:   %s\n", ident.ID)
			fmt.Printf("Name: %s\n", ident.Name)
			return nil
		},
	}
)

// resolveNovel looks a novel up by slug, offering close matches on a miss.
func resolveNovel(store *database.SQLiteStore, slug string) (*database.Novel, error) {
	novel, err := store.GetNovelBySlug(slug)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		slugs, listErr := store.ListSlugs()
		if listErr == nil {
			if suggestions := matcher.Suggest(slug, slugs, 3); len(suggestions) > 0 {
				return nil, fmt.Errorf("unknown novel: %s (did you mean %s?)", slug, strings.Join(suggestions, ", "))
			}
		}
		return nil, fmt.Errorf("unknown novel: %s", slug)
	}
	return novel, nil
}

func resolveChapter(store *database.SQLiteStore, slug, seqArg string) (*database.Novel, *database.Chapter, error) {
	novel, err := resolveNovel(store, slug)
	if err != nil {
		return nil, nil, err
	}
	seq, err := strconv.Atoi(seqArg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid chapter seq %q: %w", seqArg, err)
	}
	chapter, err := store.GetChapterBySeq(novel.ID, seq)
	if err != nil {
		return nil, nil, err
	}
	if chapter == nil {
		return nil, nil, fmt.Errorf("%s has no chapter %d", novel.Title, seq)
	}
	return novel, chapter, nil
}

func init() {
	progressCmd.AddCommand(progressSetCmd)
	progressCmd.AddCommand(progressShowCmd)

	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(deviceCmd)
}
