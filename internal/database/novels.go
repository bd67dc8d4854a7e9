// file: internal/database/novels.go
// version: 1.2.0
// guid: 3f7b1d8e-6a2c-4e9b-8d4f-1c5a9e3b7d0f

package database

import (
	"database/sql"
	"fmt"
)

// Novel operations

func (s *SQLiteStore) CreateNovel(n *Novel) (*Novel, error) {
	result, err := s.db.Exec(`INSERT INTO novels
		(title, author, description, cover_path, lang_original, status, release_status, slug)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		novelInsertValues(n)...)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetNovelByID(id)
}

func (s *SQLiteStore) GetNovelByID(id int64) (*Novel, error) {
	var n Novel
	query := fmt.Sprintf(`SELECT %s FROM novels WHERE id = ?`, novelColumns)
	err := scanNovel(s.db.QueryRow(query, id), &n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *SQLiteStore) GetNovelBySlug(slug string) (*Novel, error) {
	var n Novel
	query := fmt.Sprintf(`SELECT %s FROM novels WHERE slug = ?`, novelColumns)
	err := scanNovel(s.db.QueryRow(query, slug), &n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNovel overwrites the mutable columns of a novel. updated_at is
// refreshed by the store trigger, not here.
func (s *SQLiteStore) UpdateNovel(id int64, n *Novel) (*Novel, error) {
	result, err := s.db.Exec(`UPDATE novels SET
		title = ?, author = ?, description = ?, cover_path = ?,
		lang_original = ?, status = ?, release_status = ?, slug = ?
		WHERE id = ?`,
		append(novelInsertValues(n), id)...)
	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("novel not found")
	}
	return s.GetNovelByID(id)
}

// DeleteNovel removes a novel; its chapters, their variants and all progress
// rows cascade.
func (s *SQLiteStore) DeleteNovel(id int64) error {
	result, err := s.db.Exec("DELETE FROM novels WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("novel not found")
	}
	return nil
}

// Genre / Tag / Folder lookup entities

func (s *SQLiteStore) GetOrCreateGenre(name string) (*Genre, error) {
	var g Genre
	err := s.db.QueryRow("SELECT id, name FROM genres WHERE name = ?", name).Scan(&g.ID, &g.Name)
	if err == nil {
		return &g, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	result, err := s.db.Exec("INSERT INTO genres (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Genre{ID: id, Name: name}, nil
}

func (s *SQLiteStore) GetOrCreateTag(name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRow("SELECT id, name FROM tags WHERE name = ?", name).Scan(&t.ID, &t.Name)
	if err == nil {
		return &t, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	result, err := s.db.Exec("INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Tag{ID: id, Name: name}, nil
}

func (s *SQLiteStore) GetOrCreateFolder(name string) (*Folder, error) {
	var f Folder
	err := s.db.QueryRow("SELECT id, name, sort_order FROM folders WHERE name = ?", name).
		Scan(&f.ID, &f.Name, &f.SortOrder)
	if err == nil {
		return &f, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	result, err := s.db.Exec("INSERT INTO folders (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Folder{ID: id, Name: name}, nil
}

func (s *SQLiteStore) GetGenreByName(name string) (*Genre, error) {
	var g Genre
	err := s.db.QueryRow("SELECT id, name FROM genres WHERE name = ?", name).Scan(&g.ID, &g.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *SQLiteStore) GetTagByName(name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRow("SELECT id, name FROM tags WHERE name = ?", name).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) GetFolderByName(name string) (*Folder, error) {
	var f Folder
	err := s.db.QueryRow("SELECT id, name, sort_order FROM folders WHERE name = ?", name).
		Scan(&f.ID, &f.Name, &f.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListSlugs returns every non-NULL novel slug, sorted. Cheap enough for a
// personal library; suggestion ranking happens in memory.
func (s *SQLiteStore) ListSlugs() ([]string, error) {
	rows, err := s.db.Query("SELECT slug FROM novels WHERE slug IS NOT NULL ORDER BY slug")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (s *SQLiteStore) UpdateFolderSortOrder(id int64, sortOrder int) error {
	_, err := s.db.Exec("UPDATE folders SET sort_order = ? WHERE id = ?", sortOrder, id)
	return err
}

// Facet membership. All three are many-to-many; attaching twice is a no-op
// thanks to INSERT OR IGNORE on the composite primary key.

func (s *SQLiteStore) AddNovelGenre(novelID, genreID int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO novel_genres (novel_id, genre_id) VALUES (?, ?)",
		novelID, genreID)
	return err
}

func (s *SQLiteStore) RemoveNovelGenre(novelID, genreID int64) error {
	_, err := s.db.Exec("DELETE FROM novel_genres WHERE novel_id = ? AND genre_id = ?",
		novelID, genreID)
	return err
}

func (s *SQLiteStore) AddNovelTag(novelID, tagID int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO novel_tags (novel_id, tag_id) VALUES (?, ?)",
		novelID, tagID)
	return err
}

func (s *SQLiteStore) RemoveNovelTag(novelID, tagID int64) error {
	_, err := s.db.Exec("DELETE FROM novel_tags WHERE novel_id = ? AND tag_id = ?",
		novelID, tagID)
	return err
}

func (s *SQLiteStore) AddNovelToFolder(novelID, folderID int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO novel_folders (novel_id, folder_id) VALUES (?, ?)",
		novelID, folderID)
	return err
}

func (s *SQLiteStore) RemoveNovelFromFolder(novelID, folderID int64) error {
	_, err := s.db.Exec("DELETE FROM novel_folders WHERE novel_id = ? AND folder_id = ?",
		novelID, folderID)
	return err
}

// GetStats returns library-wide aggregate counts.
func (s *SQLiteStore) GetStats() (*LibraryStats, error) {
	stats := &LibraryStats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM novels", &stats.TotalNovels},
		{"SELECT COUNT(*) FROM chapters", &stats.TotalChapters},
		{"SELECT COUNT(*) FROM chapter_variants", &stats.TotalVariants},
		{"SELECT COUNT(*) FROM genres", &stats.TotalGenres},
		{"SELECT COUNT(*) FROM tags", &stats.TotalTags},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
