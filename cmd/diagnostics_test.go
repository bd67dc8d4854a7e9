// file: cmd/diagnostics_test.go
// version: 1.1.0
// guid: a6d2f8b4-9e0c-4c5a-8f7d-3b1e6a9c4d20

package cmd

import (
	"os"
	"testing"

	"github.com/novelshelf/novelshelf/internal/database"
)

func TestPromptYesNo(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	_, _ = w.Write([]byte("yes\n"))
	_ = w.Close()

	origStdin := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = origStdin
	}()

	confirmed, err := promptYesNo("confirm")
	if err != nil {
		t.Fatalf("promptYesNo failed: %v", err)
	}
	if !confirmed {
		t.Fatal("expected confirmation")
	}
}

func TestPromptYesNoNo(t *testing.T) {
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

	confirmed, err := promptYesNo("confirm")
	if err != nil {
		t.Fatalf("promptYesNo failed: %v", err)
	}
	if confirmed {
		t.Fatal("expected rejection")
	}
}

func TestRunDiagnosticsQueryErrors(t *testing.T) {
	if err := runDiagnosticsQuery(0); err == nil {
		t.Fatal("expected error for invalid limit")
	}
}

func TestRunDiagnosticsQuerySuccess(t *testing.T) {
	withTestConfig(t)

	store, closer, err := openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	slug := "diag-novel"
	if _, err := store.CreateNovel(&database.Novel{Title: "Diag Novel", Slug: &slug}); err != nil {
		t.Fatalf("failed to create novel: %v", err)
	}
	closer()

	if err := runDiagnosticsQuery(5); err != nil {
		t.Fatalf("runDiagnosticsQuery failed: %v", err)
	}
}

func TestRunIntegrityCheckCleanDatabase(t *testing.T) {
	withTestConfig(t)

	if err := runIntegrityCheck(); err != nil {
		t.Fatalf("runIntegrityCheck failed: %v", err)
	}
}

func TestRunCleanupEmptyVariantsDryRun(t *testing.T) {
	withTestConfig(t)

	store, closer, err := openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	novel, err := store.CreateNovel(&database.Novel{Title: "Cleanup Novel"})
	if err != nil {
		t.Fatalf("failed to create novel: %v", err)
	}
	chapter, err := store.CreateChapter(&database.Chapter{NovelID: novel.ID, Seq: 1})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	if _, err := store.CreateVariant(&database.ChapterVariant{
		ChapterID:   chapter.ID,
		VariantType: database.VariantMTL,
		Lang:        "en",
		Content:     "",
	}); err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	closer()

	if err := runCleanupEmptyVariants(false, true); err != nil {
		t.Fatalf("runCleanupEmptyVariants failed: %v", err)
	}

	// Dry run must leave the row in place.
	store, closer, err = openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer closer()
	empty, err := store.FindEmptyVariants()
	if err != nil {
		t.Fatalf("FindEmptyVariants failed: %v", err)
	}
	if len(empty) != 1 {
		t.Errorf("expected variant to survive a dry run, got %d", len(empty))
	}
}

func TestRunCleanupEmptyVariantsForced(t *testing.T) {
	withTestConfig(t)

	store, closer, err := openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	novel, err := store.CreateNovel(&database.Novel{Title: "Forced Cleanup"})
	if err != nil {
		t.Fatalf("failed to create novel: %v", err)
	}
	chapter, err := store.CreateChapter(&database.Chapter{NovelID: novel.ID, Seq: 1})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	if _, err := store.CreateVariant(&database.ChapterVariant{
		ChapterID:   chapter.ID,
		VariantType: database.VariantMTL,
		Lang:        "en",
		Content:     "",
	}); err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	closer()

	if err := runCleanupEmptyVariants(true, false); err != nil {
		t.Fatalf("runCleanupEmptyVariants failed: %v", err)
	}

	store, closer, err = openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer closer()
	empty, err := store.FindEmptyVariants()
	if err != nil {
		t.Fatalf("FindEmptyVariants failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty variants removed, got %d", len(empty))
	}
}
