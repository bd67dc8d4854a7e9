// file: internal/database/chapters.go
// version: 1.2.0
// guid: 8d2f6a4b-9e1c-4c7d-b3a8-5f0e2d9c6b1a

package database

import (
	"database/sql"
	"fmt"
)

// Chapter operations

func (s *SQLiteStore) CreateChapter(c *Chapter) (*Chapter, error) {
	result, err := s.db.Exec(`INSERT INTO chapters (novel_id, seq, volume, display_title)
		VALUES (?, ?, ?, ?)`,
		chapterInsertValues(c)...)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetChapterByID(id)
}

func (s *SQLiteStore) GetChapterByID(id int64) (*Chapter, error) {
	var c Chapter
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE id = ?`, chapterColumns)
	err := scanChapter(s.db.QueryRow(query, id), &c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) GetChapterBySeq(novelID int64, seq int) (*Chapter, error) {
	var c Chapter
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE novel_id = ? AND seq = ?`, chapterColumns)
	err := scanChapter(s.db.QueryRow(query, novelID, seq), &c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) GetChaptersByNovelID(novelID int64) ([]Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE novel_id = ? ORDER BY seq`, chapterColumns)
	rows, err := s.db.Query(query, novelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var c Chapter
		if err := scanChapter(rows, &c); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

func (s *SQLiteStore) DeleteChapter(id int64) error {
	result, err := s.db.Exec("DELETE FROM chapters WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chapter not found")
	}
	return nil
}

// Chapter variant operations

func (s *SQLiteStore) CreateVariant(v *ChapterVariant) (*ChapterVariant, error) {
	result, err := s.db.Exec(`INSERT INTO chapter_variants
		(chapter_id, variant_type, lang, title, content, source_url, provider, model_name, is_primary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		variantInsertValues(v)...)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetVariantByID(id)
}

func (s *SQLiteStore) GetVariantByID(id int64) (*ChapterVariant, error) {
	var v ChapterVariant
	query := fmt.Sprintf(`SELECT %s FROM chapter_variants WHERE id = ?`, variantColumns)
	err := scanVariant(s.db.QueryRow(query, id), &v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *SQLiteStore) GetVariantsByChapterID(chapterID int64) ([]ChapterVariant, error) {
	query := fmt.Sprintf(`SELECT %s FROM chapter_variants WHERE chapter_id = ?
		ORDER BY is_primary DESC, variant_type, lang`, variantColumns)
	rows, err := s.db.Query(query, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []ChapterVariant
	for rows.Next() {
		var v ChapterVariant
		if err := scanVariant(rows, &v); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// GetPrimaryVariant returns the variant flagged is_primary, or the oldest
// variant when none is flagged. The flag is an advisory hint only; when
// several variants carry it the lowest id wins.
func (s *SQLiteStore) GetPrimaryVariant(chapterID int64) (*ChapterVariant, error) {
	var v ChapterVariant
	query := fmt.Sprintf(`SELECT %s FROM chapter_variants WHERE chapter_id = ?
		ORDER BY is_primary DESC, id LIMIT 1`, variantColumns)
	err := scanVariant(s.db.QueryRow(query, chapterID), &v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVariantContent replaces a variant's body text. updated_at refreshes
// via trigger.
func (s *SQLiteStore) UpdateVariantContent(id int64, content string) error {
	result, err := s.db.Exec("UPDATE chapter_variants SET content = ? WHERE id = ?", content, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("variant not found")
	}
	return nil
}

func (s *SQLiteStore) DeleteVariant(id int64) error {
	_, err := s.db.Exec("DELETE FROM chapter_variants WHERE id = ?", id)
	return err
}

// FindEmptyVariants returns variants whose body text is empty, usually left
// behind by an interrupted import.
func (s *SQLiteStore) FindEmptyVariants() ([]ChapterVariant, error) {
	query := fmt.Sprintf(`SELECT %s FROM chapter_variants WHERE content = '' ORDER BY id`,
		variantColumns)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []ChapterVariant
	for rows.Next() {
		var v ChapterVariant
		if err := scanVariant(rows, &v); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// Bookmark operations. One bookmark per (chapter, device); writing again
// updates the existing row in place.

func (s *SQLiteStore) UpsertBookmark(b *Bookmark) error {
	_, err := s.db.Exec(`INSERT INTO bookmarks (chapter_id, position_pct, device_id)
		VALUES (?, ?, ?)
		ON CONFLICT(chapter_id, device_id) DO UPDATE SET
			position_pct = excluded.position_pct,
			updated_at = strftime('%s','now')`,
		bookmarkInsertValues(b)...)
	return err
}

func (s *SQLiteStore) GetBookmark(chapterID int64, deviceID string) (*Bookmark, error) {
	var b Bookmark
	query := fmt.Sprintf(`SELECT %s FROM bookmarks WHERE chapter_id = ? AND device_id = ?`, bookmarkColumns)
	err := scanBookmark(s.db.QueryRow(query, chapterID, deviceID), &b)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) GetBookmarksByChapterID(chapterID int64) ([]Bookmark, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookmarks WHERE chapter_id = ? ORDER BY device_id`, bookmarkColumns)
	rows, err := s.db.Query(query, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := scanBookmark(rows, &b); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (s *SQLiteStore) DeleteBookmark(chapterID int64, deviceID string) error {
	_, err := s.db.Exec("DELETE FROM bookmarks WHERE chapter_id = ? AND device_id = ?",
		chapterID, deviceID)
	return err
}
