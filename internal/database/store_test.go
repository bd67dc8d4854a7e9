// file: internal/database/store_test.go
// version: 1.2.0
// guid: 4c8e1a6d-3b9f-4d2a-8e5c-7a0b4f9e2c6d

package database

import (
	"os"
	"testing"

	ulid "github.com/oklog/ulid/v2"
)

// setupTestDB creates a temporary migrated SQLite database for testing.
// Returns the store and a cleanup function.
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpfile := "/tmp/test_novelshelf_" + ulid.Make().String() + ".db"

	store, err := NewSQLiteStore(tmpfile)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := store.ApplyAll(); err != nil {
		store.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpfile)
	}

	return store, cleanup
}

func strPtr(s string) *string { return &s }

// seedNovel inserts a minimal novel and fails the test on error.
func seedNovel(t *testing.T, store *SQLiteStore, title string) *Novel {
	t.Helper()
	n, err := store.CreateNovel(&Novel{Title: title})
	if err != nil {
		t.Fatalf("Failed to create novel %q: %v", title, err)
	}
	return n
}

// seedChapter inserts a chapter and fails the test on error.
func seedChapter(t *testing.T, store *SQLiteStore, novelID int64, seq int) *Chapter {
	t.Helper()
	c, err := store.CreateChapter(&Chapter{NovelID: novelID, Seq: seq})
	if err != nil {
		t.Fatalf("Failed to create chapter seq %d: %v", seq, err)
	}
	return c
}

func TestCreateAndGetNovel(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := store.CreateNovel(&Novel{
		Title:  "The Long Road",
		Author: strPtr("A. Writer"),
		Slug:   strPtr("the-long-road"),
	})
	if err != nil {
		t.Fatalf("Failed to create novel: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected non-zero novel ID")
	}
	if created.Status != StatusOngoing {
		t.Errorf("Expected default status %q, got %q", StatusOngoing, created.Status)
	}
	if created.CreatedAt == 0 || created.UpdatedAt == 0 {
		t.Error("Expected store-assigned timestamps")
	}

	fetched, err := store.GetNovelByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to get novel: %v", err)
	}
	if fetched == nil || fetched.Title != "The Long Road" {
		t.Errorf("Unexpected novel: %+v", fetched)
	}

	bySlug, err := store.GetNovelBySlug("the-long-road")
	if err != nil {
		t.Fatalf("Failed to get novel by slug: %v", err)
	}
	if bySlug == nil || bySlug.ID != created.ID {
		t.Error("Slug lookup returned wrong novel")
	}
}

func TestGetNovelByIDMissing(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	n, err := store.GetNovelByID(9999)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != nil {
		t.Error("Expected nil for missing novel")
	}
}

func TestUpdateNovelRefreshesTimestamp(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	// Insert with an artificially old updated_at to observe the trigger.
	result, err := store.db.Exec(
		"INSERT INTO novels (title, created_at, updated_at) VALUES ('Old', 1000, 1000)")
	if err != nil {
		t.Fatalf("Failed to insert novel: %v", err)
	}
	id, _ := result.LastInsertId()

	updated, err := store.UpdateNovel(id, &Novel{Title: "New", Status: StatusCompleted})
	if err != nil {
		t.Fatalf("Failed to update novel: %v", err)
	}
	if updated.Title != "New" || updated.Status != StatusCompleted {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.UpdatedAt <= 1000 {
		t.Errorf("Expected trigger to refresh updated_at, got %d", updated.UpdatedAt)
	}
	if updated.CreatedAt != 1000 {
		t.Errorf("created_at should not change on update, got %d", updated.CreatedAt)
	}
}

func TestChapterSeqUniqueness(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Serial")
	seedChapter(t, store, novel.ID, 1)

	_, err := store.CreateChapter(&Chapter{NovelID: novel.ID, Seq: 1})
	if err == nil {
		t.Fatal("Expected duplicate (novel_id, seq) to fail")
	}
	if !IsConstraintViolation(err) {
		t.Errorf("Expected constraint violation, got %v", err)
	}

	// Same seq on another novel is fine.
	other := seedNovel(t, store, "Other Serial")
	if _, err := store.CreateChapter(&Chapter{NovelID: other.ID, Seq: 1}); err != nil {
		t.Errorf("Same seq on another novel should succeed: %v", err)
	}
}

func TestVariantUniqueness(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Serial")
	chapter := seedChapter(t, store, novel.ID, 1)

	v := &ChapterVariant{ChapterID: chapter.ID, VariantType: VariantHuman, Lang: "en", Content: "text"}
	if _, err := store.CreateVariant(v); err != nil {
		t.Fatalf("Failed to create variant: %v", err)
	}

	_, err := store.CreateVariant(&ChapterVariant{
		ChapterID: chapter.ID, VariantType: VariantHuman, Lang: "en", Content: "other text",
	})
	if err == nil {
		t.Fatal("Expected duplicate (chapter, type, lang) to fail")
	}
	if !IsConstraintViolation(err) {
		t.Errorf("Expected constraint violation, got %v", err)
	}

	// A different language for the same kind is allowed.
	if _, err := store.CreateVariant(&ChapterVariant{
		ChapterID: chapter.ID, VariantType: VariantHuman, Lang: "de", Content: "anderer Text",
	}); err != nil {
		t.Errorf("Different lang should succeed: %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Doomed")
	chapter := seedChapter(t, store, novel.ID, 1)
	if _, err := store.CreateVariant(&ChapterVariant{
		ChapterID: chapter.ID, VariantType: VariantRaw, Lang: "ja", Content: "原文",
	}); err != nil {
		t.Fatalf("Failed to create variant: %v", err)
	}
	if err := store.UpsertBookmark(&Bookmark{ChapterID: chapter.ID, PositionPct: 0.5, DeviceID: "dev"}); err != nil {
		t.Fatalf("Failed to create bookmark: %v", err)
	}

	if err := store.DeleteNovel(novel.ID); err != nil {
		t.Fatalf("Failed to delete novel: %v", err)
	}

	for _, table := range []string{"chapters", "chapter_variants", "bookmarks"} {
		var count int
		if err := store.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("Expected %s to be empty after cascade, got %d rows", table, count)
		}
	}
}

func TestBookmarkUpsert(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Serial")
	chapter := seedChapter(t, store, novel.ID, 1)

	if err := store.UpsertBookmark(&Bookmark{ChapterID: chapter.ID, PositionPct: 0.25, DeviceID: "devA"}); err != nil {
		t.Fatalf("Failed to create bookmark: %v", err)
	}
	if err := store.UpsertBookmark(&Bookmark{ChapterID: chapter.ID, PositionPct: 0.75, DeviceID: "devA"}); err != nil {
		t.Fatalf("Failed to update bookmark: %v", err)
	}

	marks, err := store.GetBookmarksByChapterID(chapter.ID)
	if err != nil {
		t.Fatalf("Failed to list bookmarks: %v", err)
	}
	if len(marks) != 1 {
		t.Fatalf("Expected one bookmark per (chapter, device), got %d", len(marks))
	}
	if marks[0].PositionPct != 0.75 {
		t.Errorf("Expected position 0.75, got %f", marks[0].PositionPct)
	}

	// A second device keeps its own bookmark.
	if err := store.UpsertBookmark(&Bookmark{ChapterID: chapter.ID, PositionPct: 0.1, DeviceID: "devB"}); err != nil {
		t.Fatalf("Failed to create second bookmark: %v", err)
	}
	marks, err = store.GetBookmarksByChapterID(chapter.ID)
	if err != nil {
		t.Fatalf("Failed to list bookmarks: %v", err)
	}
	if len(marks) != 2 {
		t.Errorf("Expected two bookmarks, got %d", len(marks))
	}
}

func TestPrimaryVariantSelection(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Serial")
	chapter := seedChapter(t, store, novel.ID, 1)

	first, err := store.CreateVariant(&ChapterVariant{
		ChapterID: chapter.ID, VariantType: VariantMTL, Lang: "en", Content: "machine",
	})
	if err != nil {
		t.Fatalf("Failed to create variant: %v", err)
	}

	// Without a flagged variant the oldest wins.
	primary, err := store.GetPrimaryVariant(chapter.ID)
	if err != nil {
		t.Fatalf("Failed to get primary variant: %v", err)
	}
	if primary == nil || primary.ID != first.ID {
		t.Errorf("Expected oldest variant as fallback, got %+v", primary)
	}

	flagged, err := store.CreateVariant(&ChapterVariant{
		ChapterID: chapter.ID, VariantType: VariantHuman, Lang: "en",
		Content: "human", IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("Failed to create flagged variant: %v", err)
	}
	if !flagged.IsPrimary {
		t.Error("Expected is_primary round-trip to true")
	}

	primary, err = store.GetPrimaryVariant(chapter.ID)
	if err != nil {
		t.Fatalf("Failed to get primary variant: %v", err)
	}
	if primary == nil || primary.ID != flagged.ID {
		t.Errorf("Expected flagged variant, got %+v", primary)
	}
}

func TestGetStats(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	novel := seedNovel(t, store, "Serial")
	seedChapter(t, store, novel.ID, 1)
	seedChapter(t, store, novel.ID, 2)
	if _, err := store.GetOrCreateTag("action"); err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.TotalNovels != 1 || stats.TotalChapters != 2 || stats.TotalTags != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestListSlugsSkipsNull(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := store.CreateNovel(&Novel{Title: "Slugless"}); err != nil {
		t.Fatalf("Failed to create novel: %v", err)
	}
	if _, err := store.CreateNovel(&Novel{Title: "Named", Slug: strPtr("named-serial")}); err != nil {
		t.Fatalf("Failed to create novel: %v", err)
	}

	slugs, err := store.ListSlugs()
	if err != nil {
		t.Fatalf("Failed to list slugs: %v", err)
	}
	if len(slugs) != 1 || slugs[0] != "named-serial" {
		t.Errorf("Expected only the named slug, got %v", slugs)
	}
}
